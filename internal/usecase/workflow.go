package usecase

import (
	"errors"

	"github.com/NasaVasa/coinalert/internal/catalog"
	"github.com/NasaVasa/coinalert/internal/domain"
	"go.uber.org/zap"
)

type State string

const (
	StateLoading    State = "loading"
	StateEditing    State = "editing"
	StateSubmitting State = "submitting"
	StateConfirmed  State = "confirmed"
)

var ErrInvalidTransition = errors.New("action not allowed in current state")

// Workflow drives one alert configuration from catalog load to confirmation.
// It holds at most one of draft and submitted at a time. It is a reducer:
// Dispatch applies an action synchronously and may return an Effect for the
// host to run; the host reports the outcome as another action.
type Workflow struct {
	catalog   *catalog.Catalog
	submitter domain.SubmitterID
	logger    *zap.Logger

	state        State
	draft        *Draft
	submitted    *domain.SubmittedAlert
	editErr      error
	acknowledged bool
}

func NewWorkflow(cat *catalog.Catalog, submitter domain.SubmitterID, logger *zap.Logger) *Workflow {
	return &Workflow{catalog: cat, submitter: submitter, logger: logger, state: StateLoading}
}

// Start puts the workflow in Loading and requests the initial catalog fetch.
func (w *Workflow) Start() Effect {
	w.state = StateLoading
	w.draft = nil
	w.submitted = nil
	if !w.catalog.BeginRefresh() {
		return nil
	}
	return FetchCatalog{}
}

func (w *Workflow) Dispatch(action Action) (Effect, error) {
	from := w.state

	var (
		effect Effect
		err    error
	)
	switch w.state {
	case StateLoading:
		effect, err = w.onLoading(action)
	case StateEditing:
		effect, err = w.onEditing(action)
	case StateSubmitting:
		effect, err = w.onSubmitting(action)
	case StateConfirmed:
		effect, err = w.onConfirmed(action)
	default:
		err = ErrInvalidTransition
	}

	if errors.Is(err, ErrInvalidTransition) {
		w.logger.Debug("workflow action ignored", zap.String("state", string(from)), zap.String("action", action.actionName()))
		return nil, err
	}
	if from != w.state {
		w.logger.Debug(
			"workflow transition",
			zap.String("from", string(from)),
			zap.String("to", string(w.state)),
			zap.String("action", action.actionName()),
		)
	}
	return effect, err
}

func (w *Workflow) onLoading(action Action) (Effect, error) {
	switch a := action.(type) {
	case RefreshRequested:
		if !w.catalog.BeginRefresh() {
			return nil, ErrInvalidTransition
		}
		return FetchCatalog{}, nil
	case CatalogLoaded:
		if !w.catalog.Loading() {
			return nil, ErrInvalidTransition
		}
		if err := w.catalog.CompleteRefresh(a.Assets, nil); err != nil {
			return nil, err
		}
		w.enterEditing()
		return nil, nil
	case CatalogFailed:
		if !w.catalog.Loading() {
			return nil, ErrInvalidTransition
		}
		return nil, w.catalog.CompleteRefresh(nil, refreshCause(a.Err))
	}
	return nil, ErrInvalidTransition
}

// onEditing also accepts catalog refreshes. The draft survives a reload; a
// selection that disappears from the list is reported at submit time.
func (w *Workflow) onEditing(action Action) (Effect, error) {
	switch a := action.(type) {
	case RefreshRequested:
		if !w.catalog.BeginRefresh() {
			return nil, ErrInvalidTransition
		}
		return FetchCatalog{}, nil
	case CatalogLoaded:
		if !w.catalog.Loading() {
			return nil, ErrInvalidTransition
		}
		return nil, w.catalog.CompleteRefresh(a.Assets, nil)
	case CatalogFailed:
		if !w.catalog.Loading() {
			return nil, ErrInvalidTransition
		}
		return nil, w.catalog.CompleteRefresh(nil, refreshCause(a.Err))
	case AssetSelected:
		if _, ok := w.catalog.FindByID(a.ID); !ok {
			return nil, ErrUnknownAsset
		}
		w.draft.AssetID = a.ID
		return nil, nil
	case ConditionSelected:
		if !a.Kind.Valid() {
			return nil, ErrUnknownConditionKind
		}
		w.draft.Kind = a.Kind
		return nil, nil
	case ThresholdEntered:
		w.draft.Threshold = a.Value
		return nil, nil
	case DeliverySelected:
		if !a.Method.Valid() {
			return nil, ErrUnknownDeliveryMethod
		}
		w.draft.Method = a.Method
		return nil, nil
	case SubmitRequested:
		if w.catalog.Loading() {
			return nil, catalog.ErrRefreshInFlight
		}
		request, err := w.buildRequest()
		if err != nil {
			w.editErr = err
			return nil, err
		}
		w.editErr = nil
		w.state = StateSubmitting
		return CreateAlert{Request: request}, nil
	}
	return nil, ErrInvalidTransition
}

func (w *Workflow) onSubmitting(action Action) (Effect, error) {
	switch a := action.(type) {
	case SubmissionAccepted:
		alert := a.Alert
		w.submitted = &alert
		w.draft = nil
		w.editErr = nil
		w.acknowledged = false
		w.state = StateConfirmed
		return nil, nil
	case SubmissionRejected:
		cause := a.Err
		if cause == nil {
			cause = domain.ErrServiceFailure
		}
		w.editErr = cause
		w.state = StateEditing
		return nil, cause
	}
	return nil, ErrInvalidTransition
}

func (w *Workflow) onConfirmed(action Action) (Effect, error) {
	switch action.(type) {
	case ModifyRequested:
		w.submitted = nil
		w.acknowledged = false
		w.enterEditing()
		return nil, nil
	case Acknowledged:
		w.acknowledged = true
		return nil, nil
	}
	return nil, ErrInvalidTransition
}

func (w *Workflow) enterEditing() {
	var draft Draft
	if asset, ok := w.catalog.Default(); ok {
		draft = NewDraft(&asset)
	} else {
		draft = NewDraft(nil)
	}
	w.draft = &draft
	w.editErr = nil
	w.state = StateEditing
}

func (w *Workflow) buildRequest() (domain.AlertRequest, error) {
	if err := w.draft.Validate(); err != nil {
		return domain.AlertRequest{}, err
	}
	asset, ok := w.catalog.FindByID(w.draft.AssetID)
	if !ok {
		return domain.AlertRequest{}, ErrUnknownAsset
	}
	return w.draft.request(w.submitter, asset)
}

func (w *Workflow) State() State { return w.state }

// Busy reports whether an effect is outstanding.
func (w *Workflow) Busy() bool {
	return w.state == StateSubmitting || w.catalog.Loading()
}

func (w *Workflow) Draft() (Draft, bool) {
	if w.draft == nil {
		return Draft{}, false
	}
	return *w.draft, true
}

func (w *Workflow) Submitted() (domain.SubmittedAlert, bool) {
	if w.submitted == nil {
		return domain.SubmittedAlert{}, false
	}
	return *w.submitted, true
}

func refreshCause(err error) error {
	if err == nil {
		return domain.ErrRefreshFailure
	}
	return err
}
