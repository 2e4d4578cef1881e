package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
)

var ErrAlreadyExists = fmt.Errorf("already exists")
var ErrInternal = fmt.Errorf("internal error")
var ErrNotFound = fmt.Errorf("not found")
var ErrRequest = fmt.Errorf("request error")
var ErrBadRequest = fmt.Errorf("bad request")
var ErrBadResponse = fmt.Errorf("bad response")
var ErrNotAcceptable = fmt.Errorf("not acceptable")
var ErrUnknownResourceType = fmt.Errorf("unknown resource type")

var ErrMissingIdentifier = fmt.Errorf("missing identifier")
var ErrInvalidTemplate = fmt.Errorf("invalid href template")
var ErrDuplicateRelationName = fmt.Errorf("duplicate relation name")

type myError struct {
	msg    string
	target error
}

func (m myError) Error() string        { return m.msg }
func (m myError) Is(target error) bool { return target == m.target }

func NewAlreadyExistsError(msg string) error {
	return &myError{
		msg:    msg,
		target: ErrAlreadyExists,
	}
}

func NewBadRequestDataError(msg string) error {
	return &myError{
		msg:    msg,
		target: ErrBadRequest,
	}
}

func NewNotFoundError(msg string) error {
	return &myError{
		msg:    msg,
		target: ErrNotFound,
	}
}

func NewUnknownResourceTypeError(msg string) error {
	return &myError{
		msg:    msg,
		target: ErrUnknownResourceType,
	}
}

// NewMissingIdentifierError reports that an entity was passed to the builder
// without a usable identifier
func NewMissingIdentifierError(msg string) error {
	return &myError{
		msg:    msg,
		target: ErrMissingIdentifier,
	}
}

// NewInvalidTemplateError reports that an href template did not contain
// exactly one substitutable placeholder
func NewInvalidTemplateError(msg string) error {
	return &myError{
		msg:    msg,
		target: ErrInvalidTemplate,
	}
}

// NewDuplicateRelationNameError reports that two relation descriptors within
// one build call shared a name
func NewDuplicateRelationNameError(msg string) error {
	return &myError{
		msg:    msg,
		target: ErrDuplicateRelationName,
	}
}

func NewErrorFromProblemReport(code int, contentType string, body []byte) error {
	report := &struct {
		Type   string `json:"type"`
		Title  string `json:"title"`
		Detail string `json:"detail"`
	}{}

	err := json.Unmarshal(body, report)
	if err != nil {
		return fmt.Errorf("failed to process problem report from resource server: %s", err.Error())
	}

	if code == http.StatusNotFound || report.Type == problemTypeResourceNotFound {
		return NewNotFoundError(report.Detail)
	}

	if report.Type == problemTypeUnknownResourceType {
		return NewUnknownResourceTypeError(report.Detail)
	}

	if report.Type == problemTypeBadRequestData {
		return NewBadRequestDataError(report.Detail)
	}

	if report.Type == problemTypeAlreadyExists {
		return NewAlreadyExistsError(report.Detail)
	}

	return &myError{
		msg: fmt.Sprintf("[code: %d] unknown problem report of type \"%s\" with detail \"%s\" received",
			code, report.Type, report.Detail,
		),
		target: ErrInternal,
	}
}

const (
	problemTypeAlreadyExists       string = "https://linkrel.io/hypermedia/problems/already-exists"
	problemTypeBadRequestData      string = "https://linkrel.io/hypermedia/problems/bad-request-data"
	problemTypeInternalError       string = "https://linkrel.io/hypermedia/problems/internal-error"
	problemTypeNotAcceptable       string = "https://linkrel.io/hypermedia/problems/not-acceptable"
	problemTypeResourceNotFound    string = "https://linkrel.io/hypermedia/problems/resource-not-found"
	problemTypeUnknownResourceType string = "https://linkrel.io/hypermedia/problems/unknown-resource-type"
)

//ProblemDetails stores details about a certain problem according to RFC7807
//See https://tools.ietf.org/html/rfc7807
type ProblemDetails interface {
	ContentType() string
	MarshalJSON() ([]byte, error)
	WriteResponse(w http.ResponseWriter)
}

//ProblemDetailsImpl is an implementation of the ProblemDetails interface
type ProblemDetailsImpl struct {
	typ     string
	title   string
	detail  string
	code    int
	traceID string
}

const (
	//ProblemReportContentType as required by https://tools.ietf.org/html/rfc7807
	ProblemReportContentType string = "application/problem+json"
)

//AlreadyExists reports that the request tries to create an already existing resource
type AlreadyExists struct {
	ProblemDetailsImpl
}

func NewAlreadyExists(detail, traceID string) *AlreadyExists {
	return &AlreadyExists{
		ProblemDetailsImpl: ProblemDetailsImpl{
			typ:     problemTypeAlreadyExists,
			title:   "Already Exists",
			detail:  detail,
			code:    http.StatusConflict,
			traceID: traceID,
		},
	}
}

//ReportNewAlreadyExistsError creates an AlreadyExists instance and sends it to the supplied http.ResponseWriter
func ReportNewAlreadyExistsError(w http.ResponseWriter, detail, traceID string) {
	ae := NewAlreadyExists(detail, traceID)
	ae.WriteResponse(w)
}

//BadRequestData reports that the request includes input data which does not meet the requirements of the operation
type BadRequestData struct {
	ProblemDetailsImpl
}

func NewBadRequestData(detail, traceID string) *BadRequestData {
	return &BadRequestData{
		ProblemDetailsImpl: ProblemDetailsImpl{
			typ:     problemTypeBadRequestData,
			title:   "Bad Request Data",
			detail:  detail,
			code:    http.StatusBadRequest,
			traceID: traceID,
		},
	}
}

//ReportNewBadRequestData creates a BadRequestData instance and sends it to the supplied http.ResponseWriter
func ReportNewBadRequestData(w http.ResponseWriter, detail, traceID string) {
	brd := NewBadRequestData(detail, traceID)
	brd.WriteResponse(w)
}

//InternalError reports that there has been an error during the operation execution
type InternalError struct {
	ProblemDetailsImpl
}

func (ie InternalError) Error() string {
	return ie.detail
}

func NewInternalError(detail, traceID string) *InternalError {
	return &InternalError{
		ProblemDetailsImpl: ProblemDetailsImpl{
			typ:     problemTypeInternalError,
			title:   "Internal Error",
			detail:  detail,
			code:    http.StatusInternalServerError,
			traceID: traceID,
		},
	}
}

//ReportNewInternalError creates an InternalError instance and sends it to the supplied http.ResponseWriter
func ReportNewInternalError(w http.ResponseWriter, detail, traceID string) {
	ie := NewInternalError(detail, traceID)
	ie.WriteResponse(w)
}

//NotAcceptable reports that none of the representation formats that the
//client accepts can be produced by the server
type NotAcceptable struct {
	ProblemDetailsImpl
}

func NewNotAcceptable(detail, traceID string) *NotAcceptable {
	return &NotAcceptable{
		ProblemDetailsImpl: ProblemDetailsImpl{
			typ:     problemTypeNotAcceptable,
			title:   "Not Acceptable",
			detail:  detail,
			code:    http.StatusNotAcceptable,
			traceID: traceID,
		},
	}
}

//ReportNotAcceptableError creates a NotAcceptable instance and sends it to the supplied http.ResponseWriter
func ReportNotAcceptableError(w http.ResponseWriter, detail, traceID string) {
	na := NewNotAcceptable(detail, traceID)
	na.WriteResponse(w)
}

//NotFound reports that the request failed with a not found error of some kind
type NotFound struct {
	ProblemDetailsImpl
}

func NewNotFound(detail, traceID string) *NotFound {
	return &NotFound{
		ProblemDetailsImpl: ProblemDetailsImpl{
			typ:     problemTypeResourceNotFound,
			title:   "Not Found",
			detail:  detail,
			code:    http.StatusNotFound,
			traceID: traceID,
		},
	}
}

//ReportNotFoundError creates a NotFound instance and sends it to the supplied http.ResponseWriter
func ReportNotFoundError(w http.ResponseWriter, detail, traceID string) {
	nf := NewNotFound(detail, traceID)
	nf.WriteResponse(w)
}

type UnauthorizedRequest struct {
	ProblemDetailsImpl
}

func NewUnauthorizedRequest(detail, traceID string) *UnauthorizedRequest {
	return &UnauthorizedRequest{
		ProblemDetailsImpl: ProblemDetailsImpl{
			typ:     "https://linkrel.io/hypermedia/problems/unauthorized-request",
			title:   "Unauthorized Request",
			detail:  detail,
			code:    http.StatusUnauthorized,
			traceID: traceID,
		},
	}
}

func ReportUnauthorizedRequest(w http.ResponseWriter, detail, traceID string) {
	ur := NewUnauthorizedRequest(detail, traceID)
	ur.WriteResponse(w)
}

//UnknownResourceType reports that the request addressed a resource type that
//has not been registered with the server
type UnknownResourceType struct {
	ProblemDetailsImpl
}

func NewUnknownResourceType(detail, traceID string) *UnknownResourceType {
	return &UnknownResourceType{
		ProblemDetailsImpl: ProblemDetailsImpl{
			typ:     problemTypeUnknownResourceType,
			title:   "Unknown Resource Type",
			detail:  detail,
			code:    http.StatusNotFound,
			traceID: traceID,
		},
	}
}

//ReportUnknownResourceTypeError creates an UnknownResourceType instance and sends it to the supplied http.ResponseWriter
func ReportUnknownResourceTypeError(w http.ResponseWriter, detail, traceID string) {
	ut := NewUnknownResourceType(detail, traceID)
	ut.WriteResponse(w)
}

//ContentType returns the ContentType to be used when returning this problem
func (p *ProblemDetailsImpl) ContentType() string {
	return ProblemReportContentType
}

//MarshalJSON is called when a ProblemDetailsImpl instance should be serialized to JSON
func (p *ProblemDetailsImpl) MarshalJSON() ([]byte, error) {
	var traceID *string

	if p.traceID != "" {
		traceID = &p.traceID
	}

	j, err := json.Marshal(struct {
		Type    string  `json:"type"`
		Title   string  `json:"title"`
		Detail  string  `json:"detail"`
		TraceID *string `json:"traceID,omitempty"`
	}{
		Type:    p.typ,
		Title:   p.title,
		Detail:  p.detail,
		TraceID: traceID,
	})
	if err != nil {
		return nil, err
	}

	return j, nil
}

//ResponseCode returns the HTTP response code to be used when returning a specific problem
func (p *ProblemDetailsImpl) ResponseCode() int {

	if p.code != 0 {
		return p.code
	}

	return http.StatusBadRequest
}

//WriteResponse writes the contents of this instance to a http.ResponseWriter
func (p *ProblemDetailsImpl) WriteResponse(w http.ResponseWriter) {
	w.Header().Add("Content-Type", p.ContentType())
	w.Header().Add("Content-Language", "en")
	w.WriteHeader(p.ResponseCode())

	pdbytes, err := json.MarshalIndent(p, "", "  ")
	if err == nil {
		w.Write(pdbytes)
	}
}
