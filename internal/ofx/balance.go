// Package ofx reads cash balances from OFX/QFX bank statements.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/aclindsa/ofxgo"

	"github.com/Veraticus/payrank/internal/common"
	"github.com/Veraticus/payrank/internal/model"
)

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	tagFixRegex   = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// Statement is the balance block of one bank statement.
type Statement struct {
	AsOf      time.Time
	Available *float64
	AccountID string
	Currency  string
	Ledger    float64
}

// Balance returns the available balance when the bank reports one,
// otherwise the ledger balance.
func (s Statement) Balance() float64 {
	if s.Available != nil {
		return *s.Available
	}
	return s.Ledger
}

// Parser implements OFX/QFX balance parsing.
type Parser struct{}

// NewParser creates a new OFX parser.
func NewParser() *Parser {
	return &Parser{}
}

// preprocessOFX fixes common formatting issues in OFX files.
func (p *Parser) preprocessOFX(content string) string {
	// Trim any leading whitespace or blank lines before the header
	content = strings.TrimLeft(content, " \t\r\n")

	// Fix mixed-case SEVERITY values (should be INFO, WARN, or ERROR)
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)

	// Opening tags missing their closing bracket at end of line
	content = tagFixRegex.ReplaceAllString(content, "$1>")

	return content
}

// ParseStatements returns the balance of every bank statement in the file.
// Credit card statements are ignored; they are not spendable cash.
func (p *Parser) ParseStatements(ctx context.Context, reader io.Reader) ([]Statement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(p.preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse OFX file: %w", common.ErrMalformedInput, err)
	}

	var statements []Statement
	for _, msg := range resp.Bank {
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if !ok {
			continue
		}
		statements = append(statements, convertStatement(stmt))
	}

	slog.Debug("Parsed OFX file",
		"bank_statements", len(statements),
		"cc_statements", len(resp.CreditCard))

	return statements, nil
}

func convertStatement(stmt *ofxgo.StatementResponse) Statement {
	ledger, _ := stmt.BalAmt.Float64()
	s := Statement{
		AccountID: string(stmt.BankAcctFrom.AcctID),
		Currency:  stmt.CurDef.String(),
		Ledger:    ledger,
		AsOf:      stmt.DtAsOf.Time,
	}

	if stmt.AvailBalAmt != nil {
		available, _ := stmt.AvailBalAmt.Float64()
		s.Available = &available
		if stmt.AvailDtAsOf != nil && !stmt.AvailDtAsOf.IsZero() {
			s.AsOf = stmt.AvailDtAsOf.Time
		}
	}
	return s
}

// FileSource reads the cash balance from a statement file on disk.
type FileSource struct {
	parser    *Parser
	Path      string
	AccountID string // optional; empty means every bank account in the file
}

// NewFileSource creates a cash source backed by an OFX/QFX file.
func NewFileSource(path, accountID string) *FileSource {
	return &FileSource{
		parser:    NewParser(),
		Path:      path,
		AccountID: accountID,
	}
}

// CashBalance sums the selected bank statements' balances.
func (f *FileSource) CashBalance(ctx context.Context) (*model.CashBalance, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", f.Path, err)
	}
	defer func() { _ = file.Close() }()

	statements, err := f.parser.ParseStatements(ctx, file)
	if err != nil {
		return nil, err
	}

	return Sum(statements, f.AccountID, filepath.Base(f.Path))
}

// Sum combines statements into one cash balance. When accountID is set only
// that account counts. The balance is dated by the latest statement.
func Sum(statements []Statement, accountID, reference string) (*model.CashBalance, error) {
	balance := &model.CashBalance{
		Source:    model.CashSourceOFX,
		Reference: reference,
	}

	matched := 0
	for _, stmt := range statements {
		if accountID != "" && stmt.AccountID != accountID {
			continue
		}
		matched++
		balance.Amount += stmt.Balance()
		if stmt.AsOf.After(balance.RecordedAt) {
			balance.RecordedAt = stmt.AsOf
		}
	}

	if matched == 0 {
		if accountID != "" {
			return nil, fmt.Errorf("%w: account %s", common.ErrNoBalance, accountID)
		}
		return nil, common.ErrNoBalance
	}

	if balance.RecordedAt.IsZero() {
		balance.RecordedAt = time.Now()
	}
	balance.RecordedAt = balance.RecordedAt.UTC()
	return balance, nil
}
