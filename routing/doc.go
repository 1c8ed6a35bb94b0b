// Package routing resolves which company branch should handle a customer,
// matching either the postal code prefix or free-form city text, and builds
// the branch-specific transfer messages used when a conversation is handed
// over to a human team.
package routing
