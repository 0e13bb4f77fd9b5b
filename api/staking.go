package api

import (
	"net/http"

	"github.com/crowdstake/crowdstake-server/staking"
)

func (s *Server) onListPools(w http.ResponseWriter, r *http.Request) {
	pools, err := s.services.Staking.ListPools(r.Context())
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "pools": pools})
}

func (s *Server) onCreatePool(w http.ResponseWriter, r *http.Request) {
	var req staking.PoolRequest
	if err := decode(r, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}
	p, err := s.services.Staking.CreatePool(r.Context(), &req)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) onListWallets(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "userId")
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	wallets, err := s.services.Staking.ListWallets(r.Context(), id)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "tokens": wallets})
}

func (s *Server) onDeposit(w http.ResponseWriter, r *http.Request) {
	var req staking.DepositRequest
	if err := decode(r, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}
	wallet, err := s.services.Staking.Deposit(r.Context(), &req)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, wallet)
}

func (s *Server) onCreateStake(w http.ResponseWriter, r *http.Request) {
	var req staking.StakeRequest
	if err := decode(r, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}
	stake, err := s.services.Staking.CreateStake(r.Context(), &req)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, stake)
}

func (s *Server) onListStakes(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "userId")
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	stakes, err := s.services.Staking.ListStakes(r.Context(), id)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, stakes)
}

func (s *Server) onWithdraw(w http.ResponseWriter, r *http.Request) {
	var req staking.WithdrawRequest
	if err := decode(r, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}
	if err := s.services.Staking.Withdraw(r.Context(), &req); err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
