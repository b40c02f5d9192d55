package services

import (
	"context"
	"sort"
	"time"

	"github.com/stooobe/go-league/models"
	"github.com/stooobe/go-league/repositories"
)

// In-memory repository fakes. The services run their logic through the
// repository interfaces, so the full command flows can be exercised
// without a database.

type fakeTxRunner struct {
	calls int
}

func (r *fakeTxRunner) RunInTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	r.calls++
	return fn(nil)
}

type fakePlayerRepo struct {
	players map[int64]*models.Player
}

func newFakePlayerRepo() *fakePlayerRepo {
	return &fakePlayerRepo{players: make(map[int64]*models.Player)}
}

func (r *fakePlayerRepo) Create(ctx context.Context, exec repositories.SQLExecutor, player *models.Player) error {
	player.CreatedAt = time.Now()
	r.players[player.DiscordID] = player
	return nil
}

func (r *fakePlayerRepo) FindByID(ctx context.Context, exec repositories.SQLExecutor, discordID int64) (*models.Player, error) {
	player, ok := r.players[discordID]
	if !ok {
		return nil, repositories.ErrPlayerNotFound
	}
	return player, nil
}

func (r *fakePlayerRepo) FindByProfile(ctx context.Context, exec repositories.SQLExecutor, profileID int64) (*models.Player, error) {
	for _, player := range r.players {
		if player.ProfileID != nil && *player.ProfileID == profileID {
			return player, nil
		}
	}
	return nil, repositories.ErrPlayerNotFound
}

func (r *fakePlayerRepo) LinkProfile(ctx context.Context, exec repositories.SQLExecutor, discordID, profileID int64) error {
	for _, player := range r.players {
		if player.ProfileID != nil && *player.ProfileID == profileID && player.DiscordID != discordID {
			return repositories.ErrPlayerProfileConflict
		}
	}
	player, ok := r.players[discordID]
	if !ok {
		return repositories.ErrPlayerNotFound
	}
	player.ProfileID = &profileID
	return nil
}

func (r *fakePlayerRepo) Delete(ctx context.Context, exec repositories.SQLExecutor, discordID int64) error {
	if _, ok := r.players[discordID]; !ok {
		return repositories.ErrPlayerNotFound
	}
	delete(r.players, discordID)
	return nil
}

type fakeTeamRepo struct {
	teams  map[int]*models.Team
	nextID int
}

func newFakeTeamRepo() *fakeTeamRepo {
	return &fakeTeamRepo{teams: make(map[int]*models.Team), nextID: 1}
}

func (r *fakeTeamRepo) Create(ctx context.Context, exec repositories.SQLExecutor, team *models.Team, playerIDs []int64) error {
	for _, existing := range r.teams {
		if existing.Name == team.Name {
			return repositories.ErrTeamNameConflict
		}
	}
	team.ID = r.nextID
	r.nextID++
	team.CreatedAt = time.Now()
	team.PlayerIDs = append([]int64(nil), playerIDs...)
	r.teams[team.ID] = team
	return nil
}

func (r *fakeTeamRepo) FindByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Team, error) {
	team, ok := r.teams[id]
	if !ok {
		return nil, repositories.ErrTeamNotFound
	}
	return team, nil
}

func (r *fakeTeamRepo) FindByName(ctx context.Context, exec repositories.SQLExecutor, name string) (*models.Team, error) {
	for _, team := range r.teams {
		if team.Name == name {
			return team, nil
		}
	}
	return nil, repositories.ErrTeamNotFound
}

func sameRoster(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[int64]bool, len(a))
	for _, id := range a {
		set[id] = true
	}
	for _, id := range b {
		if !set[id] {
			return false
		}
	}
	return true
}

func (r *fakeTeamRepo) FindByRoster(ctx context.Context, exec repositories.SQLExecutor, playerIDs []int64) (*models.Team, error) {
	var found *models.Team
	for _, team := range r.teams {
		if sameRoster(team.PlayerIDs, playerIDs) {
			if found != nil {
				return nil, repositories.ErrTeamRosterAmbiguous
			}
			found = team
		}
	}
	if found == nil {
		return nil, repositories.ErrTeamNotFound
	}
	return found, nil
}

func (r *fakeTeamRepo) ListByPlayer(ctx context.Context, exec repositories.SQLExecutor, discordID int64) ([]*models.Team, error) {
	var teams []*models.Team
	for _, team := range r.teams {
		if team.HasPlayer(discordID) {
			teams = append(teams, team)
		}
	}
	sort.Slice(teams, func(a, b int) bool { return teams[a].ID < teams[b].ID })
	return teams, nil
}

func (r *fakeTeamRepo) Rename(ctx context.Context, exec repositories.SQLExecutor, id int, name string) error {
	for _, team := range r.teams {
		if team.Name == name && team.ID != id {
			return repositories.ErrTeamNameConflict
		}
	}
	team, ok := r.teams[id]
	if !ok {
		return repositories.ErrTeamNotFound
	}
	team.Name = name
	return nil
}

func (r *fakeTeamRepo) Delete(ctx context.Context, exec repositories.SQLExecutor, id int) error {
	if _, ok := r.teams[id]; !ok {
		return repositories.ErrTeamNotFound
	}
	delete(r.teams, id)
	return nil
}

type fakeSignupRepo struct {
	signups []*models.Signup
	teams   *fakeTeamRepo
	players *fakePlayerRepo
}

func newFakeSignupRepo(teams *fakeTeamRepo, players *fakePlayerRepo) *fakeSignupRepo {
	return &fakeSignupRepo{teams: teams, players: players}
}

func (r *fakeSignupRepo) Create(ctx context.Context, exec repositories.SQLExecutor, signup *models.Signup) error {
	for _, su := range r.signups {
		if su.TeamID == signup.TeamID && su.SessionID == signup.SessionID {
			return repositories.ErrSignupConflict
		}
	}
	r.signups = append(r.signups, signup)
	return nil
}

func (r *fakeSignupRepo) Delete(ctx context.Context, exec repositories.SQLExecutor, teamID int, sessionID int64) error {
	for i, su := range r.signups {
		if su.TeamID == teamID && su.SessionID == sessionID {
			r.signups = append(r.signups[:i], r.signups[i+1:]...)
			return nil
		}
	}
	return repositories.ErrSignupNotFound
}

func (r *fakeSignupRepo) ListByTeam(ctx context.Context, exec repositories.SQLExecutor, teamID int) ([]*models.Signup, error) {
	var out []*models.Signup
	for _, su := range r.signups {
		if su.TeamID == teamID {
			out = append(out, su)
		}
	}
	return out, nil
}

func (r *fakeSignupRepo) ListPlayerSignups(ctx context.Context, exec repositories.SQLExecutor, sessionID int64) ([]*models.TeamPlayerSignup, error) {
	var out []*models.TeamPlayerSignup
	for _, su := range r.signups {
		if su.SessionID != sessionID {
			continue
		}
		team := r.teams.teams[su.TeamID]
		if team == nil {
			continue
		}
		for _, discordID := range team.PlayerIDs {
			player := r.players.players[discordID]
			if player == nil {
				player = &models.Player{DiscordID: discordID}
			}
			out = append(out, &models.TeamPlayerSignup{Team: team, Player: player, Signup: su})
		}
	}
	return out, nil
}

func (r *fakeSignupRepo) TeamsBySession(ctx context.Context, exec repositories.SQLExecutor, sessionID int64) ([]*models.Team, error) {
	var session []*models.Signup
	for _, su := range r.signups {
		if su.SessionID == sessionID {
			session = append(session, su)
		}
	}
	sort.SliceStable(session, func(a, b int) bool {
		return session[a].SignupTime.Before(session[b].SignupTime)
	})
	var out []*models.Team
	for _, su := range session {
		if team := r.teams.teams[su.TeamID]; team != nil {
			out = append(out, team)
		}
	}
	return out, nil
}

func (r *fakeSignupRepo) ClearLobbyAssignments(ctx context.Context, exec repositories.SQLExecutor, sessionID int64) error {
	for _, su := range r.signups {
		if su.SessionID == sessionID {
			su.LobbyID = nil
		}
	}
	return nil
}

func (r *fakeSignupRepo) AssignLobby(ctx context.Context, exec repositories.SQLExecutor, teamID int, sessionID int64, lobbyID int) error {
	for _, su := range r.signups {
		if su.TeamID == teamID && su.SessionID == sessionID {
			id := lobbyID
			su.LobbyID = &id
			return nil
		}
	}
	return repositories.ErrSignupNotFound
}

func (r *fakeSignupRepo) ListByLobby(ctx context.Context, exec repositories.SQLExecutor, lobbyID int) ([]*models.Signup, error) {
	var out []*models.Signup
	for _, su := range r.signups {
		if su.LobbyID != nil && *su.LobbyID == lobbyID {
			out = append(out, su)
		}
	}
	return out, nil
}

func (r *fakeSignupRepo) CountBySession(ctx context.Context, exec repositories.SQLExecutor, sessionID int64) (int, int, error) {
	teams, players := 0, 0
	for _, su := range r.signups {
		if su.SessionID != sessionID {
			continue
		}
		teams++
		if team := r.teams.teams[su.TeamID]; team != nil {
			players += team.Size
		}
	}
	return teams, players, nil
}

type fakeSessionRepo struct {
	sessions map[int64]*models.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[int64]*models.Session)}
}

func (r *fakeSessionRepo) Get(ctx context.Context, exec repositories.SQLExecutor, id int64) (*models.Session, error) {
	session, ok := r.sessions[id]
	if !ok {
		return nil, repositories.ErrSessionNotFound
	}
	return session, nil
}

func (r *fakeSessionRepo) UpsertTime(ctx context.Context, exec repositories.SQLExecutor, id int64, sessionTime time.Time) error {
	session, ok := r.sessions[id]
	if !ok {
		r.sessions[id] = &models.Session{ID: id, SessionTime: sessionTime, SignupState: models.SignupsOpen}
		return nil
	}
	session.SessionTime = sessionTime
	return nil
}

func (r *fakeSessionRepo) SetState(ctx context.Context, exec repositories.SQLExecutor, id int64, state models.SignupState) error {
	session, ok := r.sessions[id]
	if !ok {
		return repositories.ErrSessionNotFound
	}
	session.SignupState = state
	return nil
}

func (r *fakeSessionRepo) List(ctx context.Context, exec repositories.SQLExecutor) ([]*models.Session, error) {
	var out []*models.Session
	for _, session := range r.sessions {
		out = append(out, session)
	}
	sort.Slice(out, func(a, b int) bool {
		return out[a].SessionTime.Before(out[b].SessionTime)
	})
	return out, nil
}

type hostKey struct {
	discordID int64
	sessionID int64
}

type fakeHostRepo struct {
	hosts map[hostKey]*models.Host
}

func newFakeHostRepo() *fakeHostRepo {
	return &fakeHostRepo{hosts: make(map[hostKey]*models.Host)}
}

func (r *fakeHostRepo) Upsert(ctx context.Context, exec repositories.SQLExecutor, host *models.Host) error {
	r.hosts[hostKey{host.DiscordID, host.SessionID}] = host
	return nil
}

func (r *fakeHostRepo) Delete(ctx context.Context, exec repositories.SQLExecutor, discordID, sessionID int64) error {
	delete(r.hosts, hostKey{discordID, sessionID})
	return nil
}

func (r *fakeHostRepo) ListConfirmed(ctx context.Context, exec repositories.SQLExecutor, sessionID int64) ([]*models.Host, error) {
	var out []*models.Host
	for _, host := range r.hosts {
		if host.SessionID == sessionID && host.Status == models.HostStatusConfirmed {
			out = append(out, host)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].DiscordID < out[b].DiscordID })
	return out, nil
}

type fakeLobbyRepo struct {
	lobbies map[int]*models.Lobby
	nextID  int
}

func newFakeLobbyRepo() *fakeLobbyRepo {
	return &fakeLobbyRepo{lobbies: make(map[int]*models.Lobby), nextID: 1}
}

func (r *fakeLobbyRepo) Create(ctx context.Context, exec repositories.SQLExecutor, lobby *models.Lobby) error {
	lobby.ID = r.nextID
	r.nextID++
	r.lobbies[lobby.ID] = lobby
	return nil
}

func (r *fakeLobbyRepo) ListBySession(ctx context.Context, exec repositories.SQLExecutor, sessionID int64) ([]*models.Lobby, error) {
	var out []*models.Lobby
	for _, lobby := range r.lobbies {
		if lobby.SessionID == sessionID {
			out = append(out, lobby)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out, nil
}

func (r *fakeLobbyRepo) SetHost(ctx context.Context, exec repositories.SQLExecutor, lobbyID int, hostID int64) error {
	lobby, ok := r.lobbies[lobbyID]
	if !ok {
		return repositories.ErrLobbyNotFound
	}
	lobby.HostID = &hostID
	lobby.Code = nil
	return nil
}

func (r *fakeLobbyRepo) Delete(ctx context.Context, exec repositories.SQLExecutor, lobbyID int) error {
	if _, ok := r.lobbies[lobbyID]; !ok {
		return repositories.ErrLobbyNotFound
	}
	delete(r.lobbies, lobbyID)
	return nil
}

type ratingKey struct {
	profileID int64
	season    string
}

type fakeRatingRepo struct {
	ratings map[ratingKey]float64
}

func newFakeRatingRepo() *fakeRatingRepo {
	return &fakeRatingRepo{ratings: make(map[ratingKey]float64)}
}

func (r *fakeRatingRepo) GetOfficial(ctx context.Context, exec repositories.SQLExecutor, profileID int64, season string) (*float64, error) {
	value, ok := r.ratings[ratingKey{profileID, season}]
	if !ok {
		return nil, nil
	}
	return &value, nil
}

func (r *fakeRatingRepo) SetOfficial(ctx context.Context, exec repositories.SQLExecutor, rating *models.Rating) error {
	r.ratings[ratingKey{rating.ProfileID, rating.Season}] = rating.Value
	return nil
}

type fakeProfileRepo struct {
	profiles map[int64]*models.Profile
	// stats per profile, newest first
	stats map[int64][]*models.CareerStats
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{
		profiles: make(map[int64]*models.Profile),
		stats:    make(map[int64][]*models.CareerStats),
	}
}

func (r *fakeProfileRepo) FindByID(ctx context.Context, exec repositories.SQLExecutor, profileID int64) (*models.Profile, error) {
	profile, ok := r.profiles[profileID]
	if !ok {
		return nil, repositories.ErrProfileNotFound
	}
	return profile, nil
}

func (r *fakeProfileRepo) SearchByIGN(ctx context.Context, exec repositories.SQLExecutor, ign string, limit int) ([]*models.Profile, error) {
	var out []*models.Profile
	for _, profile := range r.profiles {
		if containsFold(profile.IGN, ign) {
			out = append(out, profile)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeProfileRepo) LatestStats(ctx context.Context, exec repositories.SQLExecutor, profileID int64) (*models.CareerStats, error) {
	stats := r.stats[profileID]
	if len(stats) == 0 {
		return nil, nil
	}
	return stats[0], nil
}

func (r *fakeProfileRepo) ListStatsBefore(ctx context.Context, exec repositories.SQLExecutor, profileID int64, before time.Time) ([]*models.CareerStats, error) {
	var out []*models.CareerStats
	for _, s := range r.stats[profileID] {
		if !s.Date.After(before) {
			out = append(out, s)
		}
	}
	return out, nil
}

func containsFold(haystack, needle string) bool {
	h, n := []rune(haystack), []rune(needle)
	if len(n) == 0 {
		return true
	}
	lower := func(r rune) rune {
		if r >= 'A' && r <= 'Z' {
			return r + ('a' - 'A')
		}
		return r
	}
outer:
	for i := 0; i+len(n) <= len(h); i++ {
		for j := range n {
			if lower(h[i+j]) != lower(n[j]) {
				continue outer
			}
		}
		return true
	}
	return false
}
