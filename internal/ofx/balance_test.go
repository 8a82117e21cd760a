package ofx

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/payrank/internal/common"
	"github.com/Veraticus/payrank/internal/model"
)

const ofxHeader = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
`

func bankStatement(acctID, ledger, avail string) string {
	var b strings.Builder
	b.WriteString(`<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>USD
<BANKACCTFROM>
<BANKID>123456789
<ACCTID>` + acctID + `
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115120000[0:GMT]
<TRNAMT>-25.50
<FITID>2024011501
<NAME>CITY POWER
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>` + ledger + `
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
`)
	if avail != "" {
		b.WriteString(`<AVAILBAL>
<BALAMT>` + avail + `
<DTASOF>20240201120000[0:GMT]
</AVAILBAL>
`)
	}
	b.WriteString(`</STMTRS>
</STMTTRNRS>
`)
	return b.String()
}

func bankOFX(statements ...string) string {
	return ofxHeader + "<BANKMSGSRSV1>\n" + strings.Join(statements, "") + "</BANKMSGSRSV1>\n</OFX>"
}

func TestParseStatementsLedgerOnly(t *testing.T) {
	statements, err := NewParser().ParseStatements(context.Background(), strings.NewReader(bankOFX(bankStatement("1234567890", "1000.00", ""))))
	require.NoError(t, err)
	require.Len(t, statements, 1)

	stmt := statements[0]
	assert.Equal(t, "1234567890", stmt.AccountID)
	assert.Equal(t, "USD", stmt.Currency)
	assert.Nil(t, stmt.Available)
	assert.InDelta(t, 1000.0, stmt.Balance(), 0.001)
	assert.Equal(t, time.Date(2024, 1, 31, 12, 0, 0, 0, time.UTC), stmt.AsOf.UTC())
}

func TestParseStatementsPrefersAvailable(t *testing.T) {
	statements, err := NewParser().ParseStatements(context.Background(), strings.NewReader(bankOFX(bankStatement("1234567890", "1000.00", "850.25"))))
	require.NoError(t, err)
	require.Len(t, statements, 1)

	assert.InDelta(t, 850.25, statements[0].Balance(), 0.001)
	assert.InDelta(t, 1000.0, statements[0].Ledger, 0.001)
	assert.Equal(t, time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC), statements[0].AsOf.UTC())
}

func TestParseStatementsMalformed(t *testing.T) {
	_, err := NewParser().ParseStatements(context.Background(), strings.NewReader("not an ofx file"))
	assert.ErrorIs(t, err, common.ErrMalformedInput)
}

func TestParseStatementsCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewParser().ParseStatements(ctx, strings.NewReader(bankOFX(bankStatement("1", "1.00", ""))))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPreprocessOFX(t *testing.T) {
	p := NewParser()
	out := p.preprocessOFX("\n\n  <SEVERITY>Info</SEVERITY>\n<CODE\n")
	assert.Equal(t, "<SEVERITY>INFO</SEVERITY>\n<CODE>\n", out)
}

func TestSum(t *testing.T) {
	avail := 200.0
	statements := []Statement{
		{AccountID: "A", Ledger: 100, AsOf: time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)},
		{AccountID: "B", Ledger: 999, Available: &avail, AsOf: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)},
	}

	all, err := Sum(statements, "", "both.ofx")
	require.NoError(t, err)
	assert.InDelta(t, 300.0, all.Amount, 0.001)
	assert.Equal(t, model.CashSourceOFX, all.Source)
	assert.Equal(t, "both.ofx", all.Reference)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), all.RecordedAt)

	onlyA, err := Sum(statements, "A", "a.ofx")
	require.NoError(t, err)
	assert.InDelta(t, 100.0, onlyA.Amount, 0.001)

	_, err = Sum(statements, "Z", "z.ofx")
	assert.ErrorIs(t, err, common.ErrNoBalance)

	_, err = Sum(nil, "", "empty.ofx")
	assert.ErrorIs(t, err, common.ErrNoBalance)
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checking.qfx")
	content := bankOFX(bankStatement("111", "500.00", ""), bankStatement("222", "-75.50", ""))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	balance, err := NewFileSource(path, "").CashBalance(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 424.50, balance.Amount, 0.001)
	assert.Equal(t, "checking.qfx", balance.Reference)

	_, err = NewFileSource(filepath.Join(t.TempDir(), "missing.qfx"), "").CashBalance(context.Background())
	assert.Error(t, err)
}
