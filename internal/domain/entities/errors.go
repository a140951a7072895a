package entities

import "errors"

// ErrUnsupportedFormat is returned when a content kind or file type has no
// chunking policy. Callers must reject the upload without inserting chunks.
var ErrUnsupportedFormat = errors.New("unsupported format")

// ErrDuplicateSource marks a source name that is already present in the
// knowledge base. Ingestion treats it as a silent skip by default.
var ErrDuplicateSource = errors.New("duplicate source")
