package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/impify/internal/client/api"
	"github.com/dmitrijs2005/impify/internal/client/client"
	"github.com/dmitrijs2005/impify/internal/client/models"
	"github.com/dmitrijs2005/impify/internal/client/state"
	"github.com/dmitrijs2005/impify/internal/common"
	"github.com/dmitrijs2005/impify/internal/logging"
)

type UploadPhase int

const (
	PhaseIdle UploadPhase = iota
	PhaseValidating
	PhaseUploading
	PhaseSuccess
	PhaseFailed
)

func (p UploadPhase) String() string {
	switch p {
	case PhaseValidating:
		return "validating"
	case PhaseUploading:
		return "uploading"
	case PhaseSuccess:
		return "success"
	case PhaseFailed:
		return "failed"
	default:
		return "idle"
	}
}

// UploadState is a snapshot of the uploader.
type UploadState struct {
	Phase     UploadPhase
	Uploading bool
	Progress  int
	DragOver  bool

	// Set in PhaseSuccess.
	NoteID         models.ID
	RedirectTarget string

	// Set in PhaseFailed.
	Reason  FailureReason
	Message string
}

type UploadResult struct {
	NoteID         models.ID
	RedirectTarget string
	Body           json.RawMessage
}

// UploadError is a rejected upload with the message shown to the user.
type UploadError struct {
	Reason  FailureReason
	Message string
	Err     error
}

func (e *UploadError) Error() string { return e.Message }
func (e *UploadError) Unwrap() error { return e.Err }

// UploadFailure maps an upload error to its reason and user message.
func UploadFailure(err error) (FailureReason, string) {
	apiErr, _ := client.AsAPIError(err)
	switch {
	case errors.Is(err, client.ErrRateLimited):
		if apiErr != nil && apiErr.Message != "" {
			return ReasonRateLimited, apiErr.Message
		}
		if apiErr != nil && apiErr.ErrorText != "" {
			return ReasonRateLimited, apiErr.ErrorText
		}
		return ReasonRateLimited, "Free tier limit reached. Try again tomorrow!"
	case errors.Is(err, client.ErrPayloadTooLarge):
		return ReasonPayloadTooLarge, "File too large. Please try a smaller file."
	case errors.Is(err, client.ErrUnsupportedMediaType):
		return ReasonUnsupportedMedia, "Unsupported file format. Please try a different file."
	case apiErr != nil && apiErr.Detail() != "":
		return ReasonUploadFailed, apiErr.Detail()
	default:
		return ReasonUploadFailed, "Upload failed"
	}
}

func uploadSuccessMessage(t models.NoteType) string {
	if t == models.NoteTypeQuestionPaper {
		return "Question paper analyzed successfully! AI-generated notes and flashcards are ready."
	}
	return "Study material uploaded successfully! AI-powered notes generated."
}

type UploaderOption func(*Uploader)

// WithProgressListener receives every accepted progress value.
func WithProgressListener(fn func(percent int)) UploaderOption {
	return func(u *Uploader) { u.progressFn = fn }
}

// WithUploadSuccess runs after a successful upload with the raw response.
func WithUploadSuccess(fn func(body json.RawMessage)) UploaderOption {
	return func(u *Uploader) { u.onSuccess = fn }
}

// WithNoteCollection lets DeleteNote drop the note from a shared list.
func WithNoteCollection(c *state.Collection[models.Note]) UploaderOption {
	return func(u *Uploader) { u.notes = c }
}

// Uploader runs the Idle -> Validating -> Uploading -> Success|Failed state
// machine. It is bound to a scope: after Close, in-flight results are
// dropped and a pending redirect never fires.
type Uploader struct {
	client    client.Client
	notifier  Notifier
	navigator Navigator
	log       logging.Logger
	delay     time.Duration

	progressFn func(int)
	onSuccess  func(json.RawMessage)
	notes      *state.Collection[models.Note]
	guard      *Guard

	scope  context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	st          UploadState
	timer       *time.Timer
	redirectGen uint64
}

func NewUploader(parent context.Context, c client.Client, n Notifier, nav Navigator, redirectDelay time.Duration, log logging.Logger, opts ...UploaderOption) *Uploader {
	scope, cancel := context.WithCancel(parent)
	u := &Uploader{
		client:    c,
		notifier:  n,
		navigator: nav,
		log:       log.With("service", "upload"),
		delay:     redirectDelay,
		guard:     NewGuard(),
		scope:     scope,
		cancel:    cancel,
	}
	for _, opt := range opts {
		opt(u)
	}
	context.AfterFunc(scope, u.stopTimer)
	return u
}

func (u *Uploader) State() UploadState {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.st
}

// Close ends the scope.
func (u *Uploader) Close() {
	u.cancel()
	u.stopTimer()
}

func (u *Uploader) stopTimer() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.redirectGen++
	if u.timer != nil {
		u.timer.Stop()
		u.timer = nil
	}
}

func (u *Uploader) DragOver() {
	u.mu.Lock()
	u.st.DragOver = true
	u.mu.Unlock()
}

func (u *Uploader) DragLeave() {
	u.mu.Lock()
	u.st.DragOver = false
	u.mu.Unlock()
}

// Drop clears the drag state and uploads f. A drop without a file is ignored.
func (u *Uploader) Drop(ctx context.Context, f *File, noteType models.NoteType) (*UploadResult, error) {
	u.DragLeave()
	if f == nil {
		return nil, nil
	}
	return u.Upload(ctx, f, noteType)
}

// Upload validates f and posts it. While an upload is running further calls
// return common.ErrOperationInProgress.
func (u *Uploader) Upload(ctx context.Context, f *File, noteType models.NoteType) (*UploadResult, error) {
	if noteType == "" {
		noteType = models.NoteTypeGeneral
	}

	u.mu.Lock()
	if u.st.Uploading || u.st.Phase == PhaseValidating {
		u.mu.Unlock()
		return nil, common.ErrOperationInProgress
	}
	u.st = UploadState{Phase: PhaseValidating, DragOver: u.st.DragOver}
	u.mu.Unlock()

	if err := ValidateFile(f); err != nil {
		var verr *ValidationError
		errors.As(err, &verr)
		u.finishFailed(verr.Reason, verr.Error())
		return nil, err
	}
	if !noteType.Valid() {
		err := fmt.Errorf("unknown note type %q", noteType)
		u.finishFailed(ReasonUploadFailed, err.Error())
		return nil, err
	}

	rc, err := f.Open()
	if err != nil {
		u.finishFailed(ReasonUploadFailed, "Upload failed")
		return nil, fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()

	u.mu.Lock()
	u.st.Phase = PhaseUploading
	u.st.Uploading = true
	u.st.Progress = 0
	u.mu.Unlock()
	u.emitProgress(0)

	reqCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(u.scope, cancel)
	defer stop()

	var body json.RawMessage
	err = u.client.Upload(reqCtx, api.NotesUpload, client.Upload{
		FileName: f.Name,
		Content:  rc,
		Fields:   map[string]string{"note_type": string(noteType)},
	}, u.progress, &body)

	if u.scope.Err() != nil {
		return nil, u.scope.Err()
	}
	if ctx.Err() != nil {
		u.mu.Lock()
		u.st = UploadState{Phase: PhaseIdle, DragOver: u.st.DragOver}
		u.mu.Unlock()
		return nil, ctx.Err()
	}
	if err != nil {
		reason, msg := UploadFailure(err)
		u.log.Error(ctx, "upload failed", "file", f.Name, "reason", reason, "error", err)
		u.finishFailed(reason, msg)
		return nil, &UploadError{Reason: reason, Message: msg, Err: err}
	}

	id, found := ExtractCreatedID(body)
	target := common.NotesRoute
	if found {
		target = common.NoteRoute(string(id))
	}

	u.mu.Lock()
	u.st.Phase = PhaseSuccess
	u.st.Uploading = false
	u.st.Progress = 100
	u.st.NoteID = id
	u.st.RedirectTarget = target
	u.mu.Unlock()

	u.log.Info(ctx, "upload finished", "file", f.Name, "note_id", id)
	u.notifier.Success(uploadSuccessMessage(noteType))
	if found {
		u.scheduleRedirect(target)
	}
	if u.onSuccess != nil {
		u.onSuccess(body)
	}
	return &UploadResult{NoteID: id, RedirectTarget: target, Body: body}, nil
}

func (u *Uploader) finishFailed(reason FailureReason, msg string) {
	u.mu.Lock()
	u.st.Phase = PhaseFailed
	u.st.Uploading = false
	u.st.Progress = 0
	u.st.Reason = reason
	u.st.Message = msg
	u.mu.Unlock()
	u.notifier.Error(msg)
}

// progress accepts transport events and keeps the value non-decreasing.
func (u *Uploader) progress(pct int) {
	if pct > 100 {
		pct = 100
	}
	u.mu.Lock()
	if !u.st.Uploading || pct <= u.st.Progress {
		u.mu.Unlock()
		return
	}
	u.st.Progress = pct
	u.mu.Unlock()
	u.emitProgress(pct)
}

func (u *Uploader) emitProgress(pct int) {
	if u.progressFn != nil {
		u.progressFn(pct)
	}
}

func (u *Uploader) scheduleRedirect(target string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.scope.Err() != nil {
		return
	}
	if u.timer != nil {
		u.timer.Stop()
	}
	u.redirectGen++
	gen := u.redirectGen
	u.timer = time.AfterFunc(u.delay, func() {
		u.mu.Lock()
		live := gen == u.redirectGen && u.scope.Err() == nil
		if live {
			u.timer = nil
		}
		u.mu.Unlock()
		if live {
			u.navigator.Navigate(target)
		}
	})
}

// DeleteNote removes a note independently of the upload state machine.
func (u *Uploader) DeleteNote(ctx context.Context, id models.ID) error {
	return deleteNote(ctx, u.client, u.guard, u.notifier, u.log, id, u.notes)
}
