package services_test

import (
	"context"
	"testing"

	"github.com/cdisim/cdi_sim_app/internal/apperrors"
	"github.com/cdisim/cdi_sim_app/internal/core/domain"
	"github.com/cdisim/cdi_sim_app/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type UserServiceTestSuite struct {
	suite.Suite
	fixture *testFixture
	ctx     context.Context
}

func (s *UserServiceTestSuite) SetupTest() {
	s.fixture = newTestFixture()
	s.ctx = context.Background()
}

func (s *UserServiceTestSuite) TearDownTest() {
	s.fixture.shutdown()
}

func (s *UserServiceTestSuite) TestCreateUser_SeedsStats() {
	user, err := s.fixture.container.User.CreateUser(s.ctx, dto.CreateUserRequest{
		Username: "maria",
		Name:     "Maria Silva",
		Password: "correct-horse-battery",
	})
	s.Require().NoError(err)
	s.NotEmpty(user.UserID)
	s.NotEqual("correct-horse-battery", user.PasswordHash)

	stats := s.fixture.stats.getStats(user.UserID)
	s.True(stats.Balance.Equal(decimal.NewFromInt(10000)), "default starting balance")
	s.False(stats.LastPayoutAt.IsZero(), "accrual marker starts at registration")
}

func (s *UserServiceTestSuite) TestCreateUser_CustomStartingBalance() {
	balance := decimal.NewFromInt(500)
	user, err := s.fixture.container.User.CreateUser(s.ctx, dto.CreateUserRequest{
		Username:        "joao",
		Name:            "João",
		Password:        "some-password",
		StartingBalance: &balance,
	})
	s.Require().NoError(err)
	s.True(s.fixture.stats.getStats(user.UserID).Balance.Equal(balance))
}

func (s *UserServiceTestSuite) TestCreateUser_NegativeBalanceRejected() {
	balance := decimal.NewFromInt(-1)
	_, err := s.fixture.container.User.CreateUser(s.ctx, dto.CreateUserRequest{
		Username:        "neg",
		Name:            "Neg",
		Password:        "some-password",
		StartingBalance: &balance,
	})
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *UserServiceTestSuite) TestCreateUser_DuplicateUsername() {
	_, err := s.fixture.container.User.CreateUser(s.ctx, dto.CreateUserRequest{
		Username: "maria", Name: "Maria", Password: "some-password",
	})
	s.Require().NoError(err)

	_, err = s.fixture.container.User.CreateUser(s.ctx, dto.CreateUserRequest{
		Username: "maria", Name: "Other Maria", Password: "other-password",
	})
	s.ErrorIs(err, apperrors.ErrDuplicate)
}

func (s *UserServiceTestSuite) TestAuthenticateUser() {
	_, err := s.fixture.container.User.CreateUser(s.ctx, dto.CreateUserRequest{
		Username: "maria", Name: "Maria", Password: "correct-password",
	})
	s.Require().NoError(err)

	user, err := s.fixture.container.User.AuthenticateUser(s.ctx, "maria", "correct-password")
	s.Require().NoError(err)
	s.Equal("maria", user.Username)

	_, err = s.fixture.container.User.AuthenticateUser(s.ctx, "maria", "wrong-password")
	s.ErrorIs(err, apperrors.ErrValidation)

	// Unknown user fails identically to a wrong password.
	_, err = s.fixture.container.User.AuthenticateUser(s.ctx, "nobody", "whatever")
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *UserServiceTestSuite) registerUser(username string) string {
	user, err := s.fixture.container.User.CreateUser(s.ctx, dto.CreateUserRequest{
		Username: username, Name: username, Password: "some-password",
	})
	s.Require().NoError(err)
	return user.UserID
}

func (s *UserServiceTestSuite) TestExchangeCurrency_FundsForeignBalance() {
	userID := s.registerUser("maria")

	result, err := s.fixture.container.User.ExchangeCurrency(s.ctx, userID, dto.ExchangeRequest{
		Currency:  "USD",
		Amount:    decimal.NewFromInt(1000),
		Direction: dto.ExchangeBRLToForeign,
	})
	s.Require().NoError(err)

	// 1000 − 0.6% fee − 1.1% IOF = 983 BRL, converted at the 5.37 rate.
	expected := decimal.NewFromInt(983).Div(decimal.NewFromFloat(5.37))
	s.InDelta(expected.InexactFloat64(), result.Credited.InexactFloat64(), 1e-9)
	s.True(result.Fee.Equal(decimal.NewFromInt(6)))
	s.True(result.IOF.Equal(decimal.NewFromInt(11)))
	s.True(result.NewBalance.Equal(decimal.NewFromInt(9000)))

	s.True(s.fixture.stats.getStats(userID).Balance.Equal(decimal.NewFromInt(9000)))
	fb, ok := s.fixture.stats.getForeign(userID, "USD")
	s.Require().True(ok, "exchange must create the foreign balance row")
	s.InDelta(expected.InexactFloat64(), fb.Amount.InexactFloat64(), 1e-9)
}

func (s *UserServiceTestSuite) TestExchangeCurrency_InsufficientBalance() {
	userID := s.registerUser("maria")

	_, err := s.fixture.container.User.ExchangeCurrency(s.ctx, userID, dto.ExchangeRequest{
		Currency:  "USD",
		Amount:    decimal.NewFromInt(20000),
		Direction: dto.ExchangeBRLToForeign,
	})
	s.ErrorIs(err, apperrors.ErrInsufficientFunds)

	s.True(s.fixture.stats.getStats(userID).Balance.Equal(decimal.NewFromInt(10000)))
	_, ok := s.fixture.stats.getForeign(userID, "USD")
	s.False(ok, "failed exchange must not create a foreign balance")
}

func (s *UserServiceTestSuite) TestExchangeCurrency_BackToBRLAppliesCostsOnGross() {
	userID := s.registerUser("maria")
	s.Require().NoError(s.fixture.stats.UpsertForeignBalance(s.ctx, domain.ForeignBalance{
		UserID:       userID,
		CurrencyCode: "USD",
		Amount:       decimal.NewFromInt(100),
	}))

	result, err := s.fixture.container.User.ExchangeCurrency(s.ctx, userID, dto.ExchangeRequest{
		Currency:  "USD",
		Amount:    decimal.NewFromInt(100),
		Direction: dto.ExchangeForeignToBRL,
	})
	s.Require().NoError(err)

	// 100 × 5.37 = 537 gross; fee 3.222, IOF 5.907, credited 527.871.
	s.InDelta(527.871, result.Credited.InexactFloat64(), 1e-9)
	s.InDelta(10527.871, result.NewBalance.InexactFloat64(), 1e-9)

	fb, ok := s.fixture.stats.getForeign(userID, "USD")
	s.Require().True(ok)
	s.True(fb.Amount.IsZero())
}

func (s *UserServiceTestSuite) TestExchangeCurrency_InsufficientForeignHoldings() {
	userID := s.registerUser("maria")

	_, err := s.fixture.container.User.ExchangeCurrency(s.ctx, userID, dto.ExchangeRequest{
		Currency:  "JPY",
		Amount:    decimal.NewFromInt(500),
		Direction: dto.ExchangeForeignToBRL,
	})
	s.ErrorIs(err, apperrors.ErrInsufficientFunds)
}

func (s *UserServiceTestSuite) TestExchangeCurrency_RejectsNonPositiveAmount() {
	userID := s.registerUser("maria")

	_, err := s.fixture.container.User.ExchangeCurrency(s.ctx, userID, dto.ExchangeRequest{
		Currency:  "USD",
		Amount:    decimal.Zero,
		Direction: dto.ExchangeBRLToForeign,
	})
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *UserServiceTestSuite) TestGetUserStats() {
	userID := s.registerUser("maria")
	_, err := s.fixture.container.User.ExchangeCurrency(s.ctx, userID, dto.ExchangeRequest{
		Currency:  "USD",
		Amount:    decimal.NewFromInt(1000),
		Direction: dto.ExchangeBRLToForeign,
	})
	s.Require().NoError(err)

	stats, err := s.fixture.container.User.GetUserStats(s.ctx, userID)
	s.Require().NoError(err)
	s.True(stats.Balance.Equal(decimal.NewFromInt(9000)))
	s.True(stats.TotalDeposited.IsZero(), "exchanges are not deposits")
	s.False(stats.LastPayoutAt.IsZero())
	s.Require().Len(stats.ForeignBalances, 1)
	s.Equal("USD", stats.ForeignBalances[0].CurrencyCode)
	s.True(stats.ForeignBalances[0].Amount.IsPositive())
}

func (s *UserServiceTestSuite) TestGetUserStats_UnknownUser() {
	_, err := s.fixture.container.User.GetUserStats(s.ctx, "no-such-user")
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func TestUserServiceSuite(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}
