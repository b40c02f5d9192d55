package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/stooobe/go-league/league"
	"github.com/stooobe/go-league/models"
	"github.com/stooobe/go-league/repositories"
)

// ignSearchLimit is one more than we show, so the reply can say whether
// there were even more matches.
const ignSearchLimit = 11

// PlayerService links Discord users to game profiles and answers
// player-info queries.
type PlayerService struct {
	tx       repositories.TxRunner
	players  repositories.PlayerRepository
	profiles repositories.ProfileRepository
	teams    repositories.TeamRepository
	signups  repositories.SignupRepository
	sessions repositories.SessionRepository
	ratings  *RatingService
	logger   *slog.Logger
}

func NewPlayerService(
	tx repositories.TxRunner,
	players repositories.PlayerRepository,
	profiles repositories.ProfileRepository,
	teams repositories.TeamRepository,
	signups repositories.SignupRepository,
	sessions repositories.SessionRepository,
	ratings *RatingService,
	logger *slog.Logger,
) *PlayerService {
	return &PlayerService{
		tx:       tx,
		players:  players,
		profiles: profiles,
		teams:    teams,
		signups:  signups,
		sessions: sessions,
		ratings:  ratings,
		logger:   logger,
	}
}

type SetIGNResult struct {
	Player  *models.Player
	Profile *models.Profile
	// Rating is the player's official rating after linking, derived from
	// career stats when none was recorded. Nil when no rating could be
	// resolved.
	Rating *float64
}

// SetIGN links the member to a game profile by in-game name, creating the
// player record on first use. The argument may also be a playfab account
// ID, which disambiguates when several profiles share an IGN.
func (s *PlayerService) SetIGN(ctx context.Context, member Member, ign string) (*SetIGNResult, error) {
	ign = strings.TrimSpace(ign)
	if ign == "" {
		return nil, Userf("Must specify an IGN.")
	}

	var result *SetIGNResult
	err := s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		player, err := s.players.FindByID(ctx, exec, member.ID)
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			player = &models.Player{DiscordID: member.ID, DiscordName: member.Name}
			if err := s.players.Create(ctx, exec, player); err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		if player.ProfileID != nil {
			current := "unknown"
			if profile, err := s.profiles.FindByID(ctx, exec, *player.ProfileID); err == nil {
				current = profile.IGN
			}
			return Userf("IGN for %s already set to %s.", member.Name, current)
		}

		profile, err := s.resolveProfile(ctx, exec, ign)
		if err != nil {
			return err
		}

		owner, err := s.players.FindByProfile(ctx, exec, profile.ID)
		if err != nil && !errors.Is(err, repositories.ErrPlayerNotFound) {
			return err
		}
		if owner != nil {
			return Userf("This IGN is already associated with Discord user %q.", owner.DiscordName)
		}

		if err := s.players.LinkProfile(ctx, exec, member.ID, profile.ID); err != nil {
			if errors.Is(err, repositories.ErrPlayerProfileConflict) {
				return Userf("This IGN is already associated with another Discord user.")
			}
			return err
		}
		player.ProfileID = &profile.ID

		rating, err := s.ratings.EnsureOfficialRating(ctx, exec, profile.ID)
		if err != nil {
			return err
		}

		s.logger.Info("linked player to profile",
			slog.Int64("discord_id", member.ID),
			slog.String("ign", profile.IGN),
			slog.Int64("profile_id", profile.ID))

		result = &SetIGNResult{Player: player, Profile: profile, Rating: rating}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// resolveProfile finds the game profile for an IGN or playfab ID. An IGN
// matching several profiles lists them so the user can retry with the
// playfab ID.
func (s *PlayerService) resolveProfile(ctx context.Context, exec repositories.SQLExecutor, ign string) (*models.Profile, error) {
	matches, err := s.profiles.SearchByIGN(ctx, exec, ign, ignSearchLimit)
	if err != nil {
		return nil, err
	}

	if len(matches) > 1 {
		var b strings.Builder
		fmt.Fprintf(&b, "Found %d players with IGN = %q. You can run `/go set_ign` with the playfab ID instead of the IGN to select your account.", len(matches), ign)
		if len(matches) > 10 {
			matches = matches[:10]
			b.WriteString("\nHere are the first 10:")
		}
		for _, p := range matches {
			stats, err := s.profiles.LatestStats(ctx, exec, p.ID)
			if err != nil {
				return nil, err
			}
			if stats == nil {
				continue
			}
			fmt.Fprintf(&b, "\n* **%s** -- playfab ID= **%s**  games=%d  wr=%.0f%%  kpg=%.1f",
				p.IGN, league.AsPlayfabID(p.ID), stats.Games, stats.WinRate()*100, stats.KillsPerGame())
		}
		return nil, &UserError{Message: b.String()}
	}

	if len(matches) == 1 {
		return matches[0], nil
	}

	if league.IsPlayfabID(ign) {
		profileID, err := league.ParsePlayfabID(ign)
		if err == nil {
			profile, err := s.profiles.FindByID(ctx, exec, profileID)
			if err == nil {
				return profile, nil
			}
			if !errors.Is(err, repositories.ErrProfileNotFound) {
				return nil, err
			}
		}
	}

	return nil, Userf("Could not find a Population One account with IGN = %q.", ign)
}

// TeamSummary is one of the player's teams with its signup count.
type TeamSummary struct {
	Team        *models.Team
	SignupCount int
}

// SessionSignup is one upcoming or past signup in a player's history.
type SessionSignup struct {
	SessionID   int64
	SessionTime time.Time
	TeamName    string
}

type PlayerInfoResult struct {
	Player  *models.Player
	Profile *models.Profile
	Rating  float64
	Teams   []*TeamSummary
	// Signups is every signup across the player's teams, ordered by
	// session time.
	Signups []*SessionSignup
}

// PlayerInfo gathers a player's profile link, rating, teams and signups.
func (s *PlayerService) PlayerInfo(ctx context.Context, member Member) (*PlayerInfoResult, error) {
	player, err := s.players.FindByID(ctx, nil, member.ID)
	if errors.Is(err, repositories.ErrPlayerNotFound) {
		return nil, Userf("%s is not registered with GO League.", member.Name)
	}
	if err != nil {
		return nil, err
	}
	if player.ProfileID == nil {
		return nil, Userf("%s is not registered with GO League.", member.Name)
	}

	profile, err := s.profiles.FindByID(ctx, nil, *player.ProfileID)
	if err != nil {
		return nil, err
	}

	result := &PlayerInfoResult{Player: player, Profile: profile}
	if rating, err := s.ratings.OfficialRating(ctx, nil, profile.ID); err != nil {
		return nil, err
	} else if rating != nil {
		result.Rating = *rating
	}

	teams, err := s.teams.ListByPlayer(ctx, nil, member.ID)
	if err != nil {
		return nil, err
	}
	for _, team := range teams {
		signups, err := s.signups.ListByTeam(ctx, nil, team.ID)
		if err != nil {
			return nil, err
		}
		result.Teams = append(result.Teams, &TeamSummary{Team: team, SignupCount: len(signups)})
		for _, signup := range signups {
			session, err := s.sessions.Get(ctx, nil, signup.SessionID)
			if err != nil {
				return nil, err
			}
			result.Signups = append(result.Signups, &SessionSignup{
				SessionID:   signup.SessionID,
				SessionTime: session.SessionTime,
				TeamName:    team.Name,
			})
		}
	}
	sort.Slice(result.Signups, func(a, b int) bool {
		return result.Signups[a].SessionTime.Before(result.Signups[b].SessionTime)
	})
	return result, nil
}
