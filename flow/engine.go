package flow

import (
	"context"
	"time"

	"github.com/lfmotta/cargobot/core"
	"github.com/lfmotta/cargobot/intent"
	"github.com/lfmotta/cargobot/logging"
	"github.com/lfmotta/cargobot/routing"
	"github.com/lfmotta/cargobot/session"
)

// Options configure the flow Engine.
type Options struct {
	// Tracking performs shipment lookups. Required for the tracking flow.
	Tracking core.TrackingService
	// Recruiting lists openings and stores applications. Required for the
	// recruiting flow.
	Recruiting core.RecruitingStore
	// Suppliers stores supplier registrations. Required for the supplier
	// flow.
	Suppliers core.SupplierStore
	// Branches picks the branch for handover messages. Optional; without it
	// handovers use the generic central-office text.
	Branches core.BranchResolver
	// Profiles reads and writes the customer's resolved branch. Optional;
	// without it every handover resolves from the message alone.
	Profiles ProfileStore
	Logger   logging.Logger
	Now      func() time.Time
}

// ProfileStore is the slice of the customer store the engine needs for
// branch-aware handovers.
type ProfileStore interface {
	GetCustomerProfile(ctx context.Context, id core.CustomerID) (core.CustomerProfile, error)
	UpdateCustomerBranch(ctx context.Context, id core.CustomerID, branch string) error
}

// Engine routes messages through the dialogue flows.
type Engine struct {
	sessions   *session.InMemoryStore
	classifier *intent.Classifier
	tracking   core.TrackingService
	recruiting core.RecruitingStore
	suppliers  core.SupplierStore
	branches   core.BranchResolver
	profiles   ProfileStore
	logger     logging.Logger
	now        func() time.Time
}

// NewEngine creates an Engine. The session store and classifier are
// required; flow backends come in through options and flows without a
// backend simply never start.
func NewEngine(sessions *session.InMemoryStore, classifier *intent.Classifier, optFns ...func(o *Options)) *Engine {
	opts := Options{
		Now: time.Now,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Engine{
		sessions:   sessions,
		classifier: classifier,
		tracking:   opts.Tracking,
		recruiting: opts.Recruiting,
		suppliers:  opts.Suppliers,
		branches:   opts.Branches,
		profiles:   opts.Profiles,
		logger:     core.EnsureLogger(opts.Logger),
		now:        opts.Now,
	}
}

// Process runs text through the dialogue flows for userKey. It returns the
// flow reply and handled=true when a flow consumed the message; handled=false
// means the caller should let the model answer.
func (e *Engine) Process(ctx context.Context, userKey string, customerID core.CustomerID, text string) (string, bool) {
	st := e.sessions.GetOrCreate(userKey)

	if st.Active() {
		st.Touch(e.now())
		reply, handled := e.continueFlow(ctx, st, customerID, text)
		e.logger.Debug("continued flow", "flow", string(st.Flow()), "step", st.Step(), "handled", handled)
		return reply, handled
	}

	res := e.classifier.Classify(ctx, text)

	switch res.Intent {
	case intent.Tracking:
		if e.tracking == nil {
			return "", false
		}
		return e.startTracking(ctx, st, res.Entities)
	case intent.Recruiting:
		if e.recruiting == nil {
			return "", false
		}
		return e.startRecruiting(ctx, st, res.RecruitingAction)
	case intent.Supplier:
		if e.suppliers == nil {
			return "", false
		}
		return e.startSupplier(st), true
	case intent.Quote:
		return e.handover(ctx, routing.TransferQuote, customerID, text), true
	case intent.Pickup:
		return e.handover(ctx, routing.TransferPickup, customerID, text), true
	case intent.Human:
		return e.handover(ctx, routing.TransferAttendant, customerID, text), true
	default:
		return "", false
	}
}

// continueFlow advances the active state machine by one message.
func (e *Engine) continueFlow(ctx context.Context, st *session.State, customerID core.CustomerID, text string) (string, bool) {
	switch st.Flow() {
	case session.FlowTracking:
		return e.handleTracking(ctx, st, text)
	case session.FlowRecruiting:
		return e.handleRecruiting(ctx, st, text)
	case session.FlowSupplier:
		return e.handleSupplier(ctx, st, customerID, text)
	default:
		e.sessions.Clear(st.UserKey)
		return "", false
	}
}

// handover builds the transfer message for a human team.
func (e *Engine) handover(ctx context.Context, kind routing.TransferKind, customerID core.CustomerID, text string) string {
	branch := e.resolveBranch(ctx, customerID, text)
	e.logger.Info("handover to human team", "kind", string(kind), "branch", branchName(branch))
	return routing.TransferMessage(kind, branch)
}

// resolveBranch prefers the branch already stored on the customer profile,
// then falls back to location hints in the message itself (postal code over
// city). A fresh resolution is written back to the profile.
func (e *Engine) resolveBranch(ctx context.Context, customerID core.CustomerID, text string) *core.Branch {
	if e.branches == nil {
		return nil
	}

	if e.profiles != nil {
		profile, err := e.profiles.GetCustomerProfile(ctx, customerID)
		if err != nil {
			e.logger.Warn("loading customer profile failed", "customerID", customerID, "error", err)
		} else if profile.Branch != "" {
			if b := e.branches.ByName(profile.Branch); b != nil {
				return b
			}
		}
	}

	b := e.branches.Resolve(text, routing.ExtractPostalCode(text))
	if b == nil {
		return nil
	}
	if e.profiles != nil {
		if err := e.profiles.UpdateCustomerBranch(ctx, customerID, b.Name); err != nil {
			e.logger.Warn("persisting customer branch failed", "customerID", customerID, "error", err)
		}
	}
	return b
}

func branchName(b *core.Branch) string {
	if b == nil {
		return "generic"
	}
	return b.Name + "/" + b.UF
}
