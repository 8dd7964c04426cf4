package utils

import "errors"

// ErrUnauthorized indicates no resolvable user identity for a request
var ErrUnauthorized = errors.New("unauthorized")

// ErrAudioConvert indicates transcoder failure
// the whole ingestion aborts, no entry rows are created
type ErrAudioConvert struct {
	err error
}

// NewErrAudioConvert creates new error
func NewErrAudioConvert(err error) error {
	return &ErrAudioConvert{err: err}
}

func (e *ErrAudioConvert) Error() string {
	return "audio conversion error: " + e.err.Error()
}

func (e *ErrAudioConvert) Unwrap() error {
	return e.err
}

// ErrTranscription indicates transcription provider failure
type ErrTranscription struct {
	err error
}

// NewErrTranscription creates new error
func NewErrTranscription(err error) error {
	return &ErrTranscription{err: err}
}

func (e *ErrTranscription) Error() string {
	return "transcription error: " + e.err.Error()
}

func (e *ErrTranscription) Unwrap() error {
	return e.err
}

// ErrAnalysisParse indicates malformed analysis JSON
// entry and transcript rows may already be committed when it occurs
type ErrAnalysisParse struct {
	err error
}

// NewErrAnalysisParse creates new error
func NewErrAnalysisParse(err error) error {
	return &ErrAnalysisParse{err: err}
}

func (e *ErrAnalysisParse) Error() string {
	return "analysis parse error: " + e.err.Error()
}

func (e *ErrAnalysisParse) Unwrap() error {
	return e.err
}

// ErrPersistence indicates transactional write failure
type ErrPersistence struct {
	err error
}

// NewErrPersistence creates new error
func NewErrPersistence(err error) error {
	return &ErrPersistence{err: err}
}

func (e *ErrPersistence) Error() string {
	return "persistence error: " + e.err.Error()
}

func (e *ErrPersistence) Unwrap() error {
	return e.err
}

// ErrUpload indicates object store failure
type ErrUpload struct {
	err error
}

// NewErrUpload creates new error
func NewErrUpload(err error) error {
	return &ErrUpload{err: err}
}

func (e *ErrUpload) Error() string {
	return "upload error: " + e.err.Error()
}

func (e *ErrUpload) Unwrap() error {
	return e.err
}
