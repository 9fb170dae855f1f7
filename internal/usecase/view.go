package usecase

import (
	"github.com/NasaVasa/coinalert/internal/domain"
	"github.com/shopspring/decimal"
)

type ConfirmationAction string

const (
	ActionModify      ConfirmationAction = "modify"
	ActionAcknowledge ConfirmationAction = "acknowledge"
)

// View is a read-only projection of a workflow for the presentation layer.
// Exactly one of Editing and Confirmation is set outside Loading.
type View struct {
	State        State
	Refreshing   bool
	RefreshError error
	Editing      *EditingView
	Confirmation *ConfirmationView
}

type EditingView struct {
	Assets    []domain.Asset
	Selected  *domain.Asset
	Kind      domain.ConditionKind
	Threshold string
	Method    domain.DeliveryMethod
	Error     error
	// Frozen is set while a submission is outstanding.
	Frozen bool
}

type ConfirmationView struct {
	AssetID      domain.AssetID
	AssetName    string
	Kind         domain.ConditionKind
	Threshold    decimal.Decimal
	Method       domain.DeliveryMethod
	Acknowledged bool
	Actions      []ConfirmationAction
}

func (w *Workflow) View() View {
	view := View{
		State:        w.state,
		Refreshing:   w.catalog.Loading(),
		RefreshError: w.catalog.Err(),
	}

	switch w.state {
	case StateEditing, StateSubmitting:
		if w.draft == nil {
			return view
		}
		editing := &EditingView{
			Assets:    w.catalog.List(),
			Kind:      w.draft.Kind,
			Threshold: w.draft.Threshold,
			Method:    w.draft.Method,
			Error:     w.editErr,
			Frozen:    w.state == StateSubmitting,
		}
		if asset, ok := w.catalog.FindByID(w.draft.AssetID); ok {
			editing.Selected = &asset
		}
		view.Editing = editing
	case StateConfirmed:
		if w.submitted == nil {
			return view
		}
		view.Confirmation = &ConfirmationView{
			AssetID:      w.submitted.AssetID,
			AssetName:    w.submitted.AssetName,
			Kind:         w.submitted.Kind,
			Threshold:    w.submitted.Threshold,
			Method:       w.submitted.Method,
			Acknowledged: w.acknowledged,
			Actions:      []ConfirmationAction{ActionModify, ActionAcknowledge},
		}
	}
	return view
}
