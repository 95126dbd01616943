package repositories

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateTranslation is returned when a (lang_code, name) pair is already taken.
	ErrDuplicateTranslation = errors.New("translation name already exists")
	// ErrDuplicateLogin is returned when a user login is already taken.
	ErrDuplicateLogin = errors.New("login already exists")
)

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsClause builds a case-insensitive substring match for column.
// The pattern must come from containsPattern.
func containsClause(db *gorm.DB, column string) string {
	if strings.EqualFold(db.Dialector.Name(), "postgres") {
		return fmt.Sprintf(`%s ILIKE ? ESCAPE '\'`, column)
	}
	return fmt.Sprintf(`LOWER(%s) LIKE ? ESCAPE '\'`, column)
}

// containsPattern matches term literally, wildcards included.
func containsPattern(db *gorm.DB, term string) string {
	term = likeEscaper.Replace(term)
	if strings.EqualFold(db.Dialector.Name(), "postgres") {
		return "%" + term + "%"
	}
	return "%" + strings.ToLower(term) + "%"
}
