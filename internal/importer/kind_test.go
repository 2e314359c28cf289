package importer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistryByKey(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(false)
	k, ok := reg.ByKey("credit_card")
	require.True(t, ok)
	require.Equal(t, KindCreditCard, k)

	_, ok = reg.ByKey("nonsense")
	require.False(t, ok)

	// payroll is an optional capability
	_, ok = reg.ByKey("payroll")
	require.False(t, ok)
	_, ok = NewRegistry(true).ByKey("payroll")
	require.True(t, ok)
}

func TestRegistryForFilePrefersDetection(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(false)
	path := writeFile(t, "checking.csv", `Date,Description,Amount,Running Bal.
01/15/2025,X,-1.00,0.00
`)
	k, ok := reg.ForFile("checking", path)
	require.True(t, ok)
	require.Equal(t, KindChecking, k)
}

func TestRegistryForFileFallsBackByAccountType(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(false)
	// no detector matches a line-of-credit export; account type decides
	path := writeFile(t, "loc.csv", `Reference,Trans Date,Ref,Posting Date,Card,Payee,Amount
1,01/14/2025,ref1,01/15/2025,1111,DRAW,500.00
`)
	k, ok := reg.ForFile("line_of_credit", path)
	require.True(t, ok)
	require.Equal(t, KindLineOfCredit, k)

	_, ok = reg.ForFile("brokerage", path)
	require.False(t, ok)
}
