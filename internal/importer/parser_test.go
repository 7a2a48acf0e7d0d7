package importer

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/flux/internal/transaction"
)

func TestParse(t *testing.T) {
	type testCase struct {
		name      string
		input     string
		wantValid int
		wantErrs  int
		check     func(t *testing.T, rows []Row)
	}

	tests := []testCase{
		{
			name: "export layout",
			input: `"Date","Label","Category","Kind","Amount","Note"` + "\n" +
				`"2024-02-03","Dinner at ""Chez Paul""","Food","expense","45.5","with Ana, Bo"` + "\n" +
				`"2024-02-01","Salary","Salary","income","2500",""`,
			wantValid: 2,
			check: func(t *testing.T, rows []Row) {
				first := rows[0].Params
				assert.Equal(t, `Dinner at "Chez Paul"`, first.Label)
				assert.Equal(t, "with Ana, Bo", first.Note)
				assert.True(t, decimal.RequireFromString("45.5").Equal(first.Amount))
				assert.Equal(t, time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC), first.Date)
				assert.Equal(t, transaction.KindIncome, rows[1].Params.Kind)
			},
		},
		{
			name: "semicolons, decimal comma, legacy header",
			input: "Date;Intitule;Categorie;Type;Montant;Note\n" +
				"2024-03-01;Marché;Alimentation;Depense;12,50;\n" +
				"2024-03-02;Paie;;Recette;1 200,00;mars\n",
			wantValid: 2,
			check: func(t *testing.T, rows []Row) {
				assert.Equal(t, transaction.KindExpense, rows[0].Params.Kind)
				assert.True(t, decimal.RequireFromString("12.5").Equal(rows[0].Params.Amount))
				assert.Equal(t, "Other income", rows[1].Params.Category)
				assert.True(t, decimal.RequireFromString("1200").Equal(rows[1].Params.Amount))
			},
		},
		{
			name: "columns in any order",
			input: "amount,kind,label,date\n" +
				"3,expense,Coffee,2024-01-09\n",
			wantValid: 1,
			check: func(t *testing.T, rows []Row) {
				assert.Equal(t, "Coffee", rows[0].Params.Label)
				assert.Equal(t, "Other expense", rows[0].Params.Category)
			},
		},
		{
			name: "invalid rows are reported, blank lines ignored",
			input: "Date,Label,Category,Kind,Amount\n" +
				"not-a-date,Bad,Food,expense,1\n" +
				",,,,\n" +
				"2024-01-01,Zero,Food,expense,0\n" +
				"2024-01-01,Kind,Food,transfer,4\n" +
				"2024-01-01,,Food,expense,4\n" +
				"2024-01-01,Ok,Food,expense,abc\n" +
				"2024-01-01,Fine,Food,expense,4\n",
			wantValid: 1,
			wantErrs:  5,
			check: func(t *testing.T, rows []Row) {
				assert.Equal(t, 2, rows[0].Line)
				assert.ErrorIs(t, rows[0].Err, transaction.ErrInvalid)
				assert.Equal(t, "Fine", rows[len(rows)-1].Params.Label)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := Parse(strings.NewReader(tt.input))
			require.NoError(t, err)

			var valid, invalid int

			for _, r := range rows {
				if r.Err != nil {
					invalid++
				} else {
					valid++
				}
			}

			assert.Equal(t, tt.wantValid, valid)
			assert.Equal(t, tt.wantErrs, invalid)

			if tt.check != nil {
				tt.check(t, rows)
			}
		})
	}
}

func TestParse_BadHeader(t *testing.T) {
	for _, input := range []string{"", "foo,bar,baz\n1,2,3\n", "Date,Label\n2024-01-01,x\n"} {
		_, err := Parse(strings.NewReader(input))
		assert.ErrorIs(t, err, ErrNoHeader, "input %q", input)
	}
}
