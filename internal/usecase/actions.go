package usecase

import "github.com/NasaVasa/coinalert/internal/domain"

// Action is a message consumed by Workflow.Dispatch. User intents and the
// results of asynchronous effects are both actions.
type Action interface {
	actionName() string
}

type RefreshRequested struct{}

type CatalogLoaded struct {
	Assets []domain.Asset
}

type CatalogFailed struct {
	Err error
}

type AssetSelected struct {
	ID domain.AssetID
}

type ConditionSelected struct {
	Kind domain.ConditionKind
}

type ThresholdEntered struct {
	Value string
}

type DeliverySelected struct {
	Method domain.DeliveryMethod
}

type SubmitRequested struct{}

type SubmissionAccepted struct {
	Alert domain.SubmittedAlert
}

type SubmissionRejected struct {
	Err error
}

type ModifyRequested struct{}

type Acknowledged struct{}

func (RefreshRequested) actionName() string   { return "refresh_requested" }
func (CatalogLoaded) actionName() string      { return "catalog_loaded" }
func (CatalogFailed) actionName() string      { return "catalog_failed" }
func (AssetSelected) actionName() string      { return "asset_selected" }
func (ConditionSelected) actionName() string  { return "condition_selected" }
func (ThresholdEntered) actionName() string   { return "threshold_entered" }
func (DeliverySelected) actionName() string   { return "delivery_selected" }
func (SubmitRequested) actionName() string    { return "submit_requested" }
func (SubmissionAccepted) actionName() string { return "submission_accepted" }
func (SubmissionRejected) actionName() string { return "submission_rejected" }
func (ModifyRequested) actionName() string    { return "modify_requested" }
func (Acknowledged) actionName() string       { return "acknowledged" }

// Effect is work the workflow asks its host to perform. The host reports the
// outcome back as an Action.
type Effect interface {
	effectName() string
}

type FetchCatalog struct{}

type CreateAlert struct {
	Request domain.AlertRequest
}

func (FetchCatalog) effectName() string { return "fetch_catalog" }
func (CreateAlert) effectName() string  { return "create_alert" }

// ActionName is used for logging and metrics labels.
func ActionName(a Action) string { return a.actionName() }
