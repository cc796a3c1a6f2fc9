package auth

import (
	"context"
	"maps"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

const TextCodeInvalidTransition = "INVALID_USER_STATE_TRANSITION"

// ErrInvalidTransition is returned when a requested status change is not allowed.
var ErrInvalidTransition = goerrors.New("invalid user state transition", goerrors.CategoryValidation).
	WithTextCode(TextCodeInvalidTransition).
	WithCode(goerrors.CodeBadRequest)

// ActorRef identifies who triggered a change.
type ActorRef struct {
	ID   string
	Type string
}

// TransitionMetadata is the reason and free form data attached to a change.
type TransitionMetadata struct {
	Reason   string
	Metadata map[string]any
}

// TransitionContext is handed to hooks.
type TransitionContext struct {
	Actor ActorRef
	User  *User
	From  UserStatus
	To    UserStatus
	Meta  TransitionMetadata
}

// TransitionHook runs before or after the status is persisted.
type TransitionHook func(ctx context.Context, tc TransitionContext) error

// TransitionHookPhase tells a HookErrorHandler which hook list failed.
type TransitionHookPhase string

const (
	HookPhaseBefore TransitionHookPhase = "before_transition"
	HookPhaseAfter  TransitionHookPhase = "after_transition"
)

// HookErrorHandler decides what a failing hook means for the transition.
// Returning nil swallows the error.
type HookErrorHandler func(ctx context.Context, phase TransitionHookPhase, err error, tc TransitionContext) error

// UserStateMachine moves accounts through the activation lifecycle.
type UserStateMachine interface {
	Transition(ctx context.Context, actor ActorRef, user *User, target UserStatus, opts ...TransitionOption) (*User, error)
	CurrentStatus(user *User) UserStatus
}

type edge struct {
	from, to UserStatus
}

// activationEdges lists every allowed change. Setting the password again
// keeps an account in updated; nothing leads to notupdated.
var activationEdges = map[edge]bool{
	{UserStatusPending, UserStatusUpdated}: true,
	{UserStatusUpdated, UserStatusUpdated}: true,
}

type userStateMachine struct {
	users      UserStore
	now        func() time.Time
	sink       ActivitySink
	logger     Logger
	onHookFail HookErrorHandler
}

// StateMachineOption customizes NewUserStateMachine.
type StateMachineOption func(*userStateMachine)

func WithStateMachineClock(clock func() time.Time) StateMachineOption {
	return func(sm *userStateMachine) {
		if clock != nil {
			sm.now = clock
		}
	}
}

func WithStateMachineActivitySink(sink ActivitySink) StateMachineOption {
	return func(sm *userStateMachine) {
		sm.sink = normalizeActivitySink(sink)
	}
}

// WithStateMachineHookErrorHandler replaces the default, which returns the
// hook error unchanged.
func WithStateMachineHookErrorHandler(handler HookErrorHandler) StateMachineOption {
	return func(sm *userStateMachine) {
		if handler != nil {
			sm.onHookFail = handler
		}
	}
}

func WithStateMachineLogger(logger Logger) StateMachineOption {
	return func(sm *userStateMachine) {
		sm.logger = normalizeLogger(logger)
	}
}

// NewUserStateMachine returns a state machine that persists through users.
func NewUserStateMachine(users UserStore, opts ...StateMachineOption) UserStateMachine {
	sm := &userStateMachine{
		users:  users,
		now:    time.Now,
		sink:   noopActivitySink{},
		logger: defLogger{},
		onHookFail: func(_ context.Context, _ TransitionHookPhase, err error, _ TransitionContext) error {
			return err
		},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(sm)
		}
	}
	return sm
}

// TransitionOption customizes a single Transition call.
type TransitionOption func(*transitionRequest)

type transitionRequest struct {
	meta   TransitionMetadata
	mutate []func(*User)
	before []TransitionHook
	after  []TransitionHook
}

func WithTransitionReason(reason string) TransitionOption {
	return func(r *transitionRequest) {
		r.meta.Reason = reason
	}
}

// WithTransitionMetadata merges metadata into the transition context.
func WithTransitionMetadata(metadata map[string]any) TransitionOption {
	return func(r *transitionRequest) {
		if len(metadata) == 0 {
			return
		}
		if r.meta.Metadata == nil {
			r.meta.Metadata = map[string]any{}
		}
		maps.Copy(r.meta.Metadata, metadata)
	}
}

// WithTransitionMutation changes extra fields in the same write as the status.
func WithTransitionMutation(fn func(*User)) TransitionOption {
	return func(r *transitionRequest) {
		if fn != nil {
			r.mutate = append(r.mutate, fn)
		}
	}
}

func WithBeforeTransitionHook(h TransitionHook) TransitionOption {
	return func(r *transitionRequest) {
		if h != nil {
			r.before = append(r.before, h)
		}
	}
}

func WithAfterTransitionHook(h TransitionHook) TransitionOption {
	return func(r *transitionRequest) {
		if h != nil {
			r.after = append(r.after, h)
		}
	}
}

// Transition validates the edge, applies mutations to a copy, persists it
// and only then copies the stored record back into user. A failed write
// leaves user untouched.
func (sm *userStateMachine) Transition(ctx context.Context, actor ActorRef, user *User, target UserStatus, opts ...TransitionOption) (*User, error) {
	if user == nil {
		return nil, goerrors.Wrap(ErrInvalidTransition, goerrors.CategoryValidation, "user is nil").
			WithTextCode(TextCodeInvalidTransition)
	}

	from := sm.CurrentStatus(user)
	if !activationEdges[edge{from, target}] {
		return nil, goerrors.New("invalid user state transition", goerrors.CategoryValidation).
			WithTextCode(TextCodeInvalidTransition).
			WithCode(goerrors.CodeBadRequest).
			WithMetadata(map[string]any{"from": from, "to": target})
	}

	req := &transitionRequest{}
	for _, opt := range opts {
		if opt != nil {
			opt(req)
		}
	}

	tc := TransitionContext{Actor: actor, User: user, From: from, To: target, Meta: req.snapshot()}
	if err := sm.run(ctx, HookPhaseBefore, req.before, tc); err != nil {
		return nil, err
	}

	next := *user
	for _, fn := range req.mutate {
		fn(&next)
	}
	next.Status = target
	next.UpdatedAt = sm.now()

	stored, err := sm.users.Update(ctx, &next)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		stored = &next
	}
	*user = *stored

	if err := sm.run(ctx, HookPhaseAfter, req.after, tc); err != nil {
		return nil, err
	}

	if from != target {
		if actor == (ActorRef{}) {
			actor = ActorRef{Type: "system"}
		}
		recordActivity(ctx, sm.sink, sm.logger, sm.now, ActivityEvent{
			EventType:  ActivityEventUserStatusChanged,
			Actor:      actor,
			UserID:     user.ID,
			FromStatus: from,
			ToStatus:   target,
			Metadata:   tc.Meta.flatten(),
		})
	}

	return user, nil
}

// CurrentStatus treats an empty status as pending.
func (sm *userStateMachine) CurrentStatus(user *User) UserStatus {
	switch {
	case user == nil:
		return ""
	case user.Status == "":
		return UserStatusPending
	default:
		return user.Status
	}
}

func (sm *userStateMachine) run(ctx context.Context, phase TransitionHookPhase, hooks []TransitionHook, tc TransitionContext) error {
	for _, hook := range hooks {
		if err := hook(ctx, tc); err != nil {
			return sm.onHookFail(ctx, phase, err, tc)
		}
	}
	return nil
}

func (r *transitionRequest) snapshot() TransitionMetadata {
	return TransitionMetadata{Reason: r.meta.Reason, Metadata: maps.Clone(r.meta.Metadata)}
}

func (m TransitionMetadata) flatten() map[string]any {
	if m.Reason == "" && len(m.Metadata) == 0 {
		return nil
	}
	out := maps.Clone(m.Metadata)
	if out == nil {
		out = map[string]any{}
	}
	if m.Reason != "" {
		out["reason"] = m.Reason
	}
	return out
}
