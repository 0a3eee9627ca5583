package dataset

import "fmt"

// SchemaError reports a raw collection that cannot be prepared because a
// critical column is entirely absent. It is a configuration problem with the
// upstream source, not a data-quality problem with individual rows.
type SchemaError struct {
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("raw play data is missing critical column %q", e.Column)
}

// DataQualityError reports that cleaning left zero usable rows. Surfaced
// instead of handing the model an empty matrix.
type DataQualityError struct {
	RawRows int
}

func (e *DataQualityError) Error() string {
	return fmt.Sprintf("no usable plays after cleaning (%d raw rows)", e.RawRows)
}
