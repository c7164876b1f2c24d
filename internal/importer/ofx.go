package importer

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/aclindsa/ofxgo"
)

// ParseOFX extracts transactions from an OFX/QFX download. Bank and credit
// card statements are both read; transactions without a posted date are
// skipped with a warning. Results are sorted ascending by date.
func ParseOFX(data []byte) (*Preview, error) {
	resp, err := ofxgo.ParseResponse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("invalid OFX file: %w", err)
	}

	preview := &Preview{}

	for _, msg := range resp.Bank {
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		appendOFXTransactions(preview, stmt.BankTranList.Transactions)
	}
	for _, msg := range resp.CreditCard {
		stmt, ok := msg.(*ofxgo.CCStatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		appendOFXTransactions(preview, stmt.BankTranList.Transactions)
	}

	if len(preview.Transactions) == 0 {
		return nil, fmt.Errorf("no transactions found in OFX file")
	}

	sort.SliceStable(preview.Transactions, func(i, j int) bool {
		return preview.Transactions[i].Date < preview.Transactions[j].Date
	})
	return preview, nil
}

func appendOFXTransactions(preview *Preview, txs []ofxgo.Transaction) {
	for _, tx := range txs {
		if tx.DtPosted.IsZero() {
			preview.warn("Skipped a transaction without a posted date")
			continue
		}
		amount, _ := tx.TrnAmt.Float64()
		preview.Transactions = append(preview.Transactions, ParsedTransaction{
			Date:        tx.DtPosted.Format("2006-01-02"),
			Amount:      amount,
			Description: ofxDescription(string(tx.Name), string(tx.Memo)),
		})
	}
}

// ofxDescription joins the payee name and memo when both are present.
func ofxDescription(name, memo string) string {
	name = strings.TrimSpace(name)
	memo = strings.TrimSpace(memo)
	switch {
	case name != "" && memo != "":
		return name + " - " + memo
	case name != "":
		return name
	default:
		return memo
	}
}
