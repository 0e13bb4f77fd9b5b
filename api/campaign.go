package api

import (
	"net/http"

	"github.com/crowdstake/crowdstake-server/crowdfund"
)

func (s *Server) onListCampaigns(w http.ResponseWriter, r *http.Request) {
	list, err := s.services.Campaigns.ListCampaigns(r.Context())
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) onGetCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	c, err := s.services.Campaigns.GetCampaign(r.Context(), id)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) onCreateCampaign(w http.ResponseWriter, r *http.Request) {
	var req crowdfund.CampaignRequest
	if err := decode(r, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}
	c, err := s.services.Campaigns.CreateCampaign(r.Context(), &req)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "campaign": c})
}

func (s *Server) onDonate(w http.ResponseWriter, r *http.Request) {
	var req crowdfund.DonateRequest
	if err := decode(r, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}
	total, err := s.services.Campaigns.Donate(r.Context(), &req)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "new_amount_raised": total})
}

func (s *Server) onUserRewards(w http.ResponseWriter, r *http.Request) {
	points, err := s.services.Campaigns.UserRewardPoints(r.Context(), r.URL.Query().Get("email"))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "reward_points": points})
}

func (s *Server) onUserRewardsDetail(w http.ResponseWriter, r *http.Request) {
	total, campaigns, err := s.services.Campaigns.UserRewardsDetail(r.Context(), r.URL.Query().Get("email"))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":             true,
		"total_reward_points": total,
		"campaigns":           campaigns,
	})
}

func (s *Server) onDonationHistory(w http.ResponseWriter, r *http.Request) {
	history, err := s.services.Campaigns.DonationHistory(r.Context(), r.URL.Query().Get("email"))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "history": history})
}

func (s *Server) onDonationsReceived(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.URL.Query().Get("user_id"), "user_id")
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	donations, err := s.services.Campaigns.DonationsReceived(r.Context(), id)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "donations": donations})
}
