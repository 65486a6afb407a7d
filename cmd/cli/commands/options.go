package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/jakechorley/team-rota/internal/config"
	"github.com/jakechorley/team-rota/pkg/core/services"
)

const dateLayout = "2006-01-02"

func feedOptions(cfg *config.Config) services.FeedOptions {
	return services.FeedOptions{
		HorizonDays: cfg.Feed.HorizonDays,
		UrgencyDays: cfg.Feed.UrgencyDays,
	}
}

func sweepOptions(cfg *config.Config) services.SweepOptions {
	return services.SweepOptions{
		RetentionDays: cfg.Retention.Days,
		Transactional: cfg.Retention.Transactional,
	}
}

// parseDecision reads an accept/reject answer
func parseDecision(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "accept", "accepted", "yes", "y":
		return true, nil
	case "reject", "rejected", "no", "n":
		return false, nil
	}
	return false, fmt.Errorf("decision must be accept or reject, got %q", s)
}

// parseAvailable reads a yes/no availability answer
func parseAvailable(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "y", "true", "available":
		return true, nil
	case "no", "n", "false", "unavailable":
		return false, nil
	}
	return false, fmt.Errorf("availability must be yes or no, got %q", s)
}

// parseDate parses a YYYY-MM-DD date as UTC midnight
func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("date must be YYYY-MM-DD: %w", err)
	}
	return t, nil
}
