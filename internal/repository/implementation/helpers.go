package implementation

import (
	"fmt"

	"carematch-be/internal/repository/contract"
	"carematch-be/pkg/database"
)

// translateError maps driver unique violations onto contract.ErrDuplicate.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if database.IsUniqueViolation(err) {
		return fmt.Errorf("%w: %v", contract.ErrDuplicate, err)
	}
	return err
}
