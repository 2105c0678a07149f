package navigator_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/openweb3-io/walletbridge/navigator"
	"github.com/openweb3-io/walletbridge/types"
)

type NavigatorTestSuite struct {
	suite.Suite
	nav *navigator.Navigator

	inner1 types.Transaction
	inner2 types.Transaction
}

func (s *NavigatorTestSuite) SetupTest() {
	s.inner1 = types.Transaction{Sender: "inner-1", Type: types.TxTypePayment, Fee: 0}
	s.inner2 = types.Transaction{Sender: "inner-2", Type: types.TxTypePayment, Fee: 0}

	appCall := types.Transaction{
		Sender: "app-caller",
		Type:   types.TxTypeAppCall,
		Fee:    2000,
		Inner:  []types.Transaction{s.inner1},
	}
	payment := types.Transaction{Sender: "payer", Type: types.TxTypePayment, Fee: 1000}
	lone := types.Transaction{Sender: "lone", Type: types.TxTypeAssetTransfer, Fee: 1000}

	s.nav = navigator.New([][]types.Transaction{
		{appCall, payment},
		{lone},
	})
}

func TestNavigator(t *testing.T) {
	suite.Run(t, new(NavigatorTestSuite))
}

func (s *NavigatorTestSuite) TestInitialState() {
	require := s.Require()
	require.Equal(navigator.LocationGroupList, s.nav.Location())
	require.Equal(-1, s.nav.Selected())
	require.Zero(s.nav.Depth())
	_, ok := s.nav.Current()
	require.False(ok)
	require.Len(s.nav.Transactions(), 3)
}

func (s *NavigatorTestSuite) TestSelectAndDrill() {
	require := s.Require()
	require.NoError(s.nav.SelectTransaction(0))
	require.Equal(navigator.LocationGroupDetail, s.nav.Location())

	current, ok := s.nav.Current()
	require.True(ok)
	require.Equal("app-caller", current.Sender)

	require.NoError(s.nav.DrillInto(s.inner1))
	require.Equal(navigator.LocationInnerDetail, s.nav.Location())
	require.Equal(1, s.nav.Depth())

	current, _ = s.nav.Current()
	require.Equal("inner-1", current.Sender)

	require.NoError(s.nav.DrillInto(s.inner2))
	require.Equal(2, s.nav.Depth())
}

func (s *NavigatorTestSuite) TestSelectOutOfRange() {
	require := s.Require()
	require.Error(s.nav.SelectTransaction(3))
	require.Error(s.nav.SelectTransaction(-1))
	require.Equal(navigator.LocationGroupList, s.nav.Location())
}

func (s *NavigatorTestSuite) TestDrillWithoutSelection() {
	s.Require().Error(s.nav.DrillInto(s.inner1))
}

func (s *NavigatorTestSuite) TestSelectResetsInnerStack() {
	require := s.Require()
	require.NoError(s.nav.SelectTransaction(0))
	require.NoError(s.nav.DrillInto(s.inner1))
	require.NoError(s.nav.DrillInto(s.inner2))
	require.Equal(2, s.nav.Depth())

	// Partial drill state never leaks across selections.
	require.NoError(s.nav.SelectTransaction(1))
	require.Equal(navigator.LocationGroupDetail, s.nav.Location())
	require.Zero(s.nav.Depth())
}

func (s *NavigatorTestSuite) TestBackTransitions() {
	require := s.Require()
	require.NoError(s.nav.SelectTransaction(0))
	require.NoError(s.nav.DrillInto(s.inner1))

	require.Equal(navigator.LocationGroupDetail, s.nav.Back())
	require.Equal(navigator.LocationGroupList, s.nav.Back())
	// GroupList is the root: back is a no-op.
	require.Equal(navigator.LocationGroupList, s.nav.Back())
}

func (s *NavigatorTestSuite) TestFeeProjection() {
	require := s.Require()
	require.EqualValues(4000, s.nav.TotalFee())
	require.Equal("0.004", s.nav.TotalFeeAlgos().String())
}
