package catalog

import (
	"context"
	"sync"

	"boltadmin/internal/api"
	"boltadmin/internal/apperr"
	"boltadmin/internal/upload"
	"boltadmin/pkg/models"

	"github.com/rs/zerolog/log"
)

// State is the form workflow position for a single draft.
type State string

const (
	StateEditing            State = "editing"
	StateValidating         State = "validating"
	StateImageUploadPending State = "image_upload_pending"
	StateSubmitting         State = "submitting"
	StateSucceeded          State = "succeeded"
	StateFailed             State = "failed"
)

// TokenSource supplies the bearer token for privileged requests.
type TokenSource interface {
	CurrentToken() string
}

// Submitter is the backend surface the workflow needs.
type Submitter interface {
	CreateProduct(ctx context.Context, token string, payload api.ProductPayload) error
	UpdateProduct(ctx context.Context, token string, id models.FlexID, payload api.ProductPayload) error
}

// ProgressObserver receives per-file upload progress for the in-flight
// submission.
type ProgressObserver func(index, percent int)

// Workflow drives one product form through
// Editing -> Validating -> (Invalid -> Editing) |
// (ImageUploadPending -> Submitting -> (Succeeded | Failed -> Editing)).
// One workflow serves one form at a time; a generation counter discards
// results from a submission the user has since abandoned, so a stale upload
// callback cannot resurrect discarded state.
type Workflow struct {
	tokens   TokenSource
	backend  Submitter
	uploader upload.Uploader

	mu       sync.Mutex
	draft    *ProductDraft
	targetID models.FlexID
	state    State
	gen      uint64
	observer ProgressObserver
	rejected []upload.Rejected
}

// NewWorkflow creates a workflow holding the initial empty draft.
func NewWorkflow(tokens TokenSource, backend Submitter, uploader upload.Uploader) *Workflow {
	return &Workflow{
		tokens:   tokens,
		backend:  backend,
		uploader: uploader,
		draft:    NewDraft(),
		state:    StateEditing,
	}
}

// LoadFrom switches the workflow to editing an existing record. Any pending
// previews of the discarded draft are released and in-flight results from a
// previous submission are invalidated.
func (w *Workflow) LoadFrom(p models.Product) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.draft.ReleasePending()
	w.draft = LoadDraftFrom(p)
	w.targetID = p.ID
	w.state = StateEditing
	w.gen++
}

// Reset discards the current draft for a fresh create form.
func (w *Workflow) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.draft.ReleasePending()
	w.draft = NewDraft()
	w.targetID = ""
	w.state = StateEditing
	w.gen++
}

// Edit mutates the draft under the workflow lock and returns to the editing
// state.
func (w *Workflow) Edit(fn func(d *ProductDraft)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fn(w.draft)
	w.state = StateEditing
}

// Draft returns a snapshot of the current draft for rendering.
func (w *Workflow) Draft() ProductDraft {
	w.mu.Lock()
	defer w.mu.Unlock()
	return *w.draft
}

// State returns the current workflow state.
func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Rejected returns the files rejected during the last submission's screening.
func (w *Workflow) Rejected() []upload.Rejected {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]upload.Rejected(nil), w.rejected...)
}

// Observe registers a per-file progress observer.
func (w *Workflow) Observe(fn ProgressObserver) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.observer = fn
}

// IsUpdate reports whether the workflow targets an existing record.
func (w *Workflow) IsUpdate() bool {
	return w.Target() != ""
}

// Target returns the id of the record being edited, or "" for a create.
func (w *Workflow) Target() models.FlexID {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.targetID
}

// Submit validates the draft and sends it to the backend, uploading any
// pending local images first and merging the returned URLs with pre-existing
// ones. A missing session token or a non-empty violation list fails before
// any network call. On success the draft resets to its initial empty state
// and pending previews are released.
func (w *Workflow) Submit(ctx context.Context) error {
	w.mu.Lock()

	token := w.tokens.CurrentToken()
	if token == "" {
		w.state = StateEditing
		w.mu.Unlock()
		return apperr.AuthErr("Authentication token not found. Please login again.")
	}

	w.state = StateValidating
	if violations := w.draft.Validate(); len(violations) > 0 {
		w.state = StateEditing
		w.mu.Unlock()
		return apperr.ValidationErr(violations)
	}

	w.gen++
	myGen := w.gen
	draft := w.draft.normalized()
	pending := append([]PendingImage(nil), w.draft.Pending...)
	urls := append([]string(nil), draft.ImageURLs...)
	target := w.targetID
	w.rejected = nil
	if len(pending) > 0 {
		w.state = StateImageUploadPending
	} else {
		w.state = StateSubmitting
	}
	w.mu.Unlock()

	if len(pending) > 0 {
		files := make([]upload.File, len(pending))
		for i, p := range pending {
			files[i] = p.File
		}

		uploaded, rejected, err := w.uploader.Upload(ctx, files, w.progressFor(myGen))
		w.applyRejections(myGen, rejected)
		if err != nil {
			w.finish(myGen, StateFailed)
			return err
		}
		urls = append(urls, uploaded...)
		w.setState(myGen, StateSubmitting)
	}

	// Screening may have rejected every pending file, leaving a draft that
	// validated on pending images but has nothing hosted to submit.
	if len(urls) == 0 {
		w.finish(myGen, StateFailed)
		return apperr.ValidationErr([]string{"At least one image is required"})
	}

	payload := draft.payload(urls)

	var err error
	if target != "" {
		err = w.backend.UpdateProduct(ctx, token, target, payload)
	} else {
		err = w.backend.CreateProduct(ctx, token, payload)
	}
	if err != nil {
		w.finish(myGen, StateFailed)
		return err
	}

	w.succeed(myGen)
	return nil
}

// payload builds the normalized wire form: comma-joined label lists and the
// merged hosted image URL set.
func (d ProductDraft) payload(urls []string) api.ProductPayload {
	return api.ProductPayload{
		Name:          d.Name,
		Description:   d.Description,
		Price:         d.Price,
		OriginalPrice: d.OriginalPrice,
		Category:      joinLabels(d.Categories),
		Brand:         d.Brand,
		Material:      d.Material,
		IsFeatured:    d.IsFeatured,
		IsActive:      d.IsActive,
		Sizes:         joinLabels(d.Sizes),
		Colors:        joinLabels(d.Colors),
		ImageURLs:     urls,
	}
}

// progressFor wraps the observer with a staleness check: updates from a
// superseded submission are dropped instead of mutating the current draft.
func (w *Workflow) progressFor(myGen uint64) upload.ProgressFunc {
	return func(index, percent int) {
		w.mu.Lock()
		if w.gen != myGen {
			w.mu.Unlock()
			return
		}
		if index >= 0 && index < len(w.draft.Pending) {
			w.draft.Pending[index].Progress = percent
		}
		observer := w.observer
		w.mu.Unlock()

		if observer != nil {
			observer(index, percent)
		}
	}
}

func (w *Workflow) applyRejections(myGen uint64, rejected []upload.Rejected) {
	if len(rejected) == 0 {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.gen != myGen {
		return
	}
	w.rejected = rejected
	for _, r := range rejected {
		log.Warn().Str("file", r.Name).Str("reason", r.Reason).Msg("image rejected before upload")
	}
}

func (w *Workflow) setState(myGen uint64, state State) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.gen == myGen {
		w.state = state
	}
}

// finish records a terminal failure and hands the form back to editing.
func (w *Workflow) finish(myGen uint64, state State) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.gen != myGen {
		return
	}
	w.state = state
	if state == StateFailed {
		w.state = StateEditing
	}
}

func (w *Workflow) succeed(myGen uint64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.gen != myGen {
		return
	}
	w.draft.ReleasePending()
	w.draft = NewDraft()
	w.targetID = ""
	w.state = StateSucceeded
	log.Info().Msg("product form submitted")
}
