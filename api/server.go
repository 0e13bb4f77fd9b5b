package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/crowdstake/crowdstake-server/account"
	"github.com/crowdstake/crowdstake-server/common/logging"
	"github.com/crowdstake/crowdstake-server/crowdfund"
	dbmodels "github.com/crowdstake/crowdstake-server/database/models/crowdfund"
	"github.com/crowdstake/crowdstake-server/staking"
	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
	"github.com/shopspring/decimal"
)

// Accounts is implemented by *account.Service.
type Accounts interface {
	Signup(ctx context.Context, req *account.SignupRequest) (*dbmodels.User, error)
	Login(ctx context.Context, req *account.LoginRequest) (*dbmodels.User, error)
	Profile(ctx context.Context, userID int64) (*dbmodels.User, error)
}

// Campaigns is implemented by *crowdfund.Service.
type Campaigns interface {
	ListCampaigns(ctx context.Context) ([]*crowdfund.Campaign, error)
	GetCampaign(ctx context.Context, campaignID int64) (*crowdfund.Campaign, error)
	CreateCampaign(ctx context.Context, req *crowdfund.CampaignRequest) (*dbmodels.Campaign, error)
	Donate(ctx context.Context, req *crowdfund.DonateRequest) (decimal.Decimal, error)
	UserRewardPoints(ctx context.Context, email string) (decimal.Decimal, error)
	UserRewardsDetail(ctx context.Context, email string) (decimal.Decimal, []*crowdfund.CampaignReward, error)
	DonationHistory(ctx context.Context, email string) ([]*crowdfund.DonationRecord, error)
	DonationsReceived(ctx context.Context, userID int64) ([]*crowdfund.DonationRecord, error)
}

// Staking is implemented by *staking.Service.
type Staking interface {
	ListPools(ctx context.Context) ([]*dbmodels.Pool, error)
	CreatePool(ctx context.Context, req *staking.PoolRequest) (*dbmodels.Pool, error)
	ListWallets(ctx context.Context, userID int64) ([]*dbmodels.Wallet, error)
	Deposit(ctx context.Context, req *staking.DepositRequest) (*dbmodels.Wallet, error)
	CreateStake(ctx context.Context, req *staking.StakeRequest) (*dbmodels.Stake, error)
	ListStakes(ctx context.Context, userID int64) ([]*staking.StakeView, error)
	Withdraw(ctx context.Context, req *staking.WithdrawRequest) error
}

// Services bundles what the public server serves.
type Services struct {
	Accounts  Accounts
	Campaigns Campaigns
	Staking   Staking
	Hub       *Hub
}

// Server is the public JSON API.
type Server struct {
	ctx      context.Context
	logger   logging.Logger
	router   *chi.Mux
	server   *http.Server
	services Services
}

func NewServer(ctx context.Context, logger logging.Logger, addr string, services Services) *Server {
	s := &Server{
		ctx:      ctx,
		logger:   logger,
		services: services,
	}
	s.router = s.routes()
	s.server = &http.Server{
		Addr:              addr,
		Handler:           cors.AllowAll().Handler(s.router),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      25 * time.Second,
	}
	return s
}

func (s *Server) routes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(observe(s.logger))
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		jsonError(w, "Not found.", http.StatusNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.onHealth)

		r.Post("/signup", s.onSignup)
		r.Post("/login", s.onLogin)
		r.Get("/profile/{userId}", s.onProfile)

		r.Get("/campaigns", s.onListCampaigns)
		r.Get("/campaign/{id}", s.onGetCampaign)
		r.Post("/donation-request", s.onCreateCampaign)
		r.Post("/donate", s.onDonate)
		r.Get("/user-rewards", s.onUserRewards)
		r.Get("/user-rewards-detail", s.onUserRewardsDetail)
		r.Get("/donation-history", s.onDonationHistory)
		r.Get("/donations-received", s.onDonationsReceived)

		r.Get("/pools", s.onListPools)
		r.Post("/pools", s.onCreatePool)
		r.Get("/wallet/{userId}", s.onListWallets)
		r.Post("/wallet/deposit", s.onDeposit)
		r.Post("/stake", s.onCreateStake)
		r.Get("/stakes/{userId}", s.onListStakes)
		r.Post("/withdraw", s.onWithdraw)
	})
	if s.services.Hub != nil {
		r.Get("/ws", s.services.Hub.ServeHTTP)
	}
	return r
}

// Handler exposes the routes without the listener, for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// Run serves until ctx is done.
func (s *Server) Run() error {
	s.logger.Info("Starting api httpserver on %s", s.server.Addr)
	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-s.ctx.Done():
		s.logger.Info("api server receives shutdown signal.")
		return s.Shutdown()
	case err := <-errCh:
		s.logger.Error("api server closed unexpectedly: %v", err)
		return err
	}
}

func (s *Server) onHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
