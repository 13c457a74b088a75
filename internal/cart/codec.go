package cart

import (
	"encoding/json"

	dErrors "milsabores/pkg/domain-errors"
)

// Encode renders the persisted cart record: a JSON array of lines. An empty
// cart encodes as [].
func Encode(c Cart) ([]byte, error) {
	items := c.items
	if items == nil {
		items = []LineItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode cart")
	}
	return data, nil
}

// Decode parses a persisted cart record. Malformed JSON or any line that
// breaks the invariants yields a CodeValidation error; callers treat the
// whole record as absent.
func Decode(data []byte) (Cart, error) {
	var items []LineItem
	if err := json.Unmarshal(data, &items); err != nil {
		return Cart{}, dErrors.Wrap(err, dErrors.CodeValidation, "cart record is not valid JSON")
	}
	c, err := New(items...)
	if err != nil {
		return Cart{}, dErrors.Wrap(err, dErrors.CodeValidation, "cart record breaks cart invariants")
	}
	return c, nil
}
