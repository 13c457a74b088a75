package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"milsabores/internal/migrate"
	"milsabores/internal/persist"
	id "milsabores/pkg/domain"
	"milsabores/pkg/money"
	"milsabores/pkg/platform/sentinel"
)

// legacyLine is the cart line shape written before the field rename.
type legacyLine struct {
	Codigo   *string      `json:"codigo"`
	Precio   *money.Money `json:"precio"`
	Nombre   string       `json:"nombre"`
	Imagen   string       `json:"imagen"`
	Quantity int          `json:"quantity"`
}

// LegacyFieldNames rewrites a cart stored with codigo/precio/nombre/imagen
// into the current field names. Records already in the current shape, or
// that cannot be read at all, are left for Load to judge.
func LegacyFieldNames() migrate.Migration {
	return migrate.Migration{
		Version: 2,
		Name:    "cart_field_names",
		Up: func(ctx context.Context, backend persist.Backend) error {
			raw, err := backend.Get(ctx, persist.KeyCart)
			if errors.Is(err, sentinel.ErrNotFound) {
				return nil
			}
			if err != nil {
				return err
			}

			var lines []legacyLine
			if err := json.Unmarshal(raw, &lines); err != nil {
				return nil
			}
			if len(lines) == 0 || lines[0].Codigo == nil {
				return nil
			}

			items := make([]LineItem, 0, len(lines))
			for _, l := range lines {
				if l.Codigo == nil || l.Precio == nil {
					return nil
				}
				items = append(items, LineItem{
					ProductCode: id.ProductCode(*l.Codigo),
					UnitPrice:   *l.Precio,
					Quantity:    l.Quantity,
					Name:        l.Nombre,
					ImageRef:    l.Imagen,
				})
			}
			data, err := json.Marshal(items)
			if err != nil {
				return fmt.Errorf("encode migrated cart: %w", err)
			}
			return backend.Set(ctx, persist.KeyCart, data)
		},
	}
}
