// Package flow implements the guided dialogue flows that run before the
// model gets a chance to answer: shipment tracking, recruiting and supplier
// registration, plus the handover intents that transfer the customer to a
// human team.
//
// Each flow is a per-user finite state machine stored in a session. When a
// message neither continues an active flow nor matches a starting intent,
// Process reports handled=false and the caller falls through to the model
// pipeline.
package flow
