package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestTranslateUniqueViolation(t *testing.T) {
	t.Run("competition and recipient pair", func(t *testing.T) {
		err := translateUniqueViolation(fmt.Errorf("insert: %w", &pgconn.PgError{
			Code:           "23505",
			ConstraintName: "certificates_competition_recipient_key",
			Detail:         "Key (competition_id, recipient_id) already exists.",
		}))
		assert.ErrorIs(t, err, ErrCertificateConflict)
		assert.NotErrorIs(t, err, ErrValidationCodeTaken)
		assert.Contains(t, err.Error(), "already exists")
	})

	t.Run("validation code", func(t *testing.T) {
		err := translateUniqueViolation(&pgconn.PgError{
			Code:           "23505",
			ConstraintName: "certificates_validation_code_key",
		})
		assert.ErrorIs(t, err, ErrValidationCodeTaken)
	})

	t.Run("other unique constraint passes through", func(t *testing.T) {
		pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "certificates_pkey"}
		err := translateUniqueViolation(pgErr)
		assert.Same(t, pgErr, err)
	})

	t.Run("other postgres error passes through", func(t *testing.T) {
		pgErr := &pgconn.PgError{Code: "23503", ConstraintName: "certificates_competition_recipient_key"}
		assert.Same(t, pgErr, translateUniqueViolation(pgErr))
	})

	t.Run("non postgres error passes through", func(t *testing.T) {
		plain := errors.New("connection reset")
		assert.Same(t, plain, translateUniqueViolation(plain))
	})
}
