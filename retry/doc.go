// Package retry implements the policy-driven executor that wraps external
// provider calls. A policy governs how many additional attempts are made,
// how long to wait between them (exponential backoff, with a more
// aggressive schedule for rate-limited calls) and the growing per-attempt
// request timeout enforced through context deadlines.
package retry
