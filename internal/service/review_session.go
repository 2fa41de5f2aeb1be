package service

import (
	"sync"
	"time"

	"estimatehub/internal/model"

	"github.com/google/uuid"
)

// Step indices within one document. Every document walks the same two steps.
const (
	StepCustomer  = 0
	StepLineItems = 1

	stepCount = 2
)

// Customer assignment modes
const (
	AssignModeOCR      = "ocr"      // bind the extracted guess; needs a directory match
	AssignModeExisting = "existing" // bind a directory entry picked by the user
	AssignModeCreate   = "create"   // create a directory entry from the guess at finish time
	AssignModeNone     = "none"     // explicit no-customer
)

// assignmentState is the per-document customer decision. boundCompanyID is set
// once a finish has committed (or, for create mode, once the company row
// exists), which is what makes retrying a failed finish idempotent.
type assignmentState struct {
	mode           string
	companyID      *uuid.UUID // selection for "existing" mode
	ocrMatchID     *uuid.UUID // directory match for the guess, resolved at load
	ocrMatchName   string
	boundCompanyID *uuid.UUID
	noCustomer     bool
}

// sessionDocument is one estimate under review, with its working item/field
// tree. The tree is the optimistic overlay: edits land here first and are then
// mirrored to the repository.
type sessionDocument struct {
	estimate   *model.Estimate
	assignment assignmentState
	completed  bool
}

// reviewSession is the wizard state machine for one batch: a pair
// (documentIndex, stepIndex) walked in order, terminal once the last document
// is finished. It enforces index bounds and step ordering only; business
// validity of a step is the step's own concern.
type reviewSession struct {
	id         uuid.UUID
	docs       []*sessionDocument
	docIndex   int
	stepIndex  int
	completed  bool
	createdAt  time.Time
	lastActive time.Time

	mu sync.Mutex
}

func newReviewSession(docs []*sessionDocument) *reviewSession {
	now := time.Now()
	return &reviewSession{
		id:         uuid.New(),
		docs:       docs,
		createdAt:  now,
		lastActive: now,
	}
}

func (s *reviewSession) touch() {
	s.lastActive = time.Now()
}

func (s *reviewSession) current() *sessionDocument {
	return s.docs[s.docIndex]
}

// advanceStep moves Customer -> LineItems within the current document.
// No-op past the last step.
func (s *reviewSession) advanceStep() {
	if s.stepIndex < stepCount-1 {
		s.stepIndex++
	}
}

// retreatStep moves LineItems -> Customer. No-op before the first step.
func (s *reviewSession) retreatStep() {
	if s.stepIndex > 0 {
		s.stepIndex--
	}
}

// jumpToDocument repositions the wizard (progress strip navigation) and always
// resets to the first step.
func (s *reviewSession) jumpToDocument(index int) bool {
	if index < 0 || index >= len(s.docs) {
		return false
	}
	s.docIndex = index
	s.stepIndex = 0
	return true
}

// completeCurrent marks the current document done and moves on, or flips the
// session terminal when it was the last one.
func (s *reviewSession) completeCurrent() {
	s.current().completed = true
	if s.docIndex == len(s.docs)-1 {
		s.completed = true
		return
	}
	s.docIndex++
	s.stepIndex = 0
}

// canProceed reports whether the customer step of a document is resolved.
// An OCR guess without a directory match can never proceed, no matter what
// the UI shows.
func (d *sessionDocument) canProceed() bool {
	a := d.assignment
	switch a.mode {
	case AssignModeNone:
		return true
	case AssignModeOCR:
		return a.ocrMatchID != nil
	case AssignModeExisting:
		return a.companyID != nil
	case AssignModeCreate:
		return d.estimate.OCRCustomerName != nil && *d.estimate.OCRCustomerName != ""
	default:
		return false
	}
}

func (d *sessionDocument) findItem(itemID uuid.UUID) *model.EstimateItem {
	for i := range d.estimate.Items {
		if d.estimate.Items[i].ID == itemID {
			return &d.estimate.Items[i]
		}
	}
	return nil
}

func (d *sessionDocument) findField(fieldID uuid.UUID) (*model.EstimateItem, *model.ItemField) {
	for i := range d.estimate.Items {
		item := &d.estimate.Items[i]
		for j := range item.Fields {
			if item.Fields[j].ID == fieldID {
				return item, &item.Fields[j]
			}
		}
	}
	return nil, nil
}

func (d *sessionDocument) removeItem(itemID uuid.UUID) bool {
	for i := range d.estimate.Items {
		if d.estimate.Items[i].ID == itemID {
			d.estimate.Items = append(d.estimate.Items[:i], d.estimate.Items[i+1:]...)
			return true
		}
	}
	return false
}

func (d *sessionDocument) removeField(fieldID uuid.UUID) bool {
	for i := range d.estimate.Items {
		item := &d.estimate.Items[i]
		for j := range item.Fields {
			if item.Fields[j].ID == fieldID {
				item.Fields = append(item.Fields[:j], item.Fields[j+1:]...)
				return true
			}
		}
	}
	return false
}
