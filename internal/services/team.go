package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/azayd/website/backend/internal/cache"
	"github.com/azayd/website/backend/internal/config"
	"github.com/azayd/website/backend/internal/models"
	"gorm.io/gorm"
)

var (
	// leadershipPattern counts leaders in the list metadata. It is case
	// sensitive, so "Lead Engineer" does not match while "Team lead" does.
	leadershipPattern = regexp.MustCompile(`(director|manager|lead|head|ceo|cto|founder)`)
	// leadershipTitlePattern selects leaders when no member carries the flag.
	leadershipTitlePattern = regexp.MustCompile(`(?i)(director|manager|lead|head|ceo|cto|founder|chief)`)
	roleWordPattern        = regexp.MustCompile(`[\p{L}\p{N}_]+`)
	roleStopWords          = map[string]bool{"and": true, "the": true, "of": true, "for": true, "with": true}
	leadershipFilterWords  = []string{"director", "manager", "lead", "head", "ceo", "cto", "founder"}
)

var teamOrdering = map[string]string{
	"order":    "display_order",
	"name":     "name",
	"position": "position",
}

// TeamFilter narrows the public team list.
type TeamFilter struct {
	ListQuery
	Role       string
	Leadership bool
}

type TeamListMetadata struct {
	TotalActiveMembers int64    `json:"total_active_members"`
	LeadershipCount    int      `json:"leadership_count"`
	Departments        []string `json:"departments"`
	LastUpdated        string   `json:"last_updated"`
}

type TeamDepartments struct {
	Departments []string `json:"departments"`
	Roles       []string `json:"roles"`
	Positions   []string `json:"positions"`
}

// FallbackTeamDepartments is served with a 500 when departments fail.
func FallbackTeamDepartments() TeamDepartments {
	return TeamDepartments{Departments: []string{}, Roles: []string{"all"}, Positions: []string{}}
}

type DepartmentSummary struct {
	Count int      `json:"count"`
	List  []string `json:"list"`
}

type ExperienceDistribution struct {
	Junior   int64 `json:"junior"`
	MidLevel int64 `json:"mid_level"`
	Senior   int64 `json:"senior"`
}

type TeamStats struct {
	TotalMembers           int64                  `json:"total_members"`
	LeadershipCount        int64                  `json:"leadership_count"`
	Departments            DepartmentSummary      `json:"departments"`
	ExperienceDistribution ExperienceDistribution `json:"experience_distribution"`
	AvgExperience          float64                `json:"avg_experience"`
	SkillsCount            int                    `json:"skills_count"`
	LastUpdated            string                 `json:"last_updated,omitempty"`
}

// FallbackTeamStats is the zeroed payload served when stats fail.
func FallbackTeamStats() TeamStats {
	return TeamStats{Departments: DepartmentSummary{List: []string{}}}
}

type TeamService struct {
	db    *gorm.DB
	cache cache.Cache
	ttl   config.CacheConfig
}

func NewTeamService(db *gorm.DB, c cache.Cache, ttl config.CacheConfig) *TeamService {
	return &TeamService{db: db, cache: c, ttl: ttl}
}

func (s *TeamService) active(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Model(&models.TeamMember{}).Where("is_active = ?", true)
}

func (s *TeamService) List(ctx context.Context, f TeamFilter) (*Page[models.TeamMember], error) {
	query := s.active(ctx)

	if role := strings.TrimSpace(f.Role); role != "" && !strings.EqualFold(role, "all") {
		posWhere, posArg := containsAny("position", role)
		bioWhere, bioArg := containsAny("bio", role)
		query = query.Where("("+posWhere+" OR "+bioWhere+")", posArg, bioArg)
	}
	if f.Leadership {
		clauses := make([]string, len(leadershipFilterWords))
		args := make([]interface{}, len(leadershipFilterWords))
		for i, kw := range leadershipFilterWords {
			clauses[i], args[i] = containsAny("position", kw)
		}
		query = query.Where("("+strings.Join(clauses, " OR ")+")", args...)
	}
	query = applySearch(query, f.Search, "name", "position", "bio")
	query = applyOrdering(query, f.Ordering, teamOrdering, "display_order ASC, name ASC")

	return paginate[models.TeamMember](query, f.ListQuery)
}

// ListMetadata summarises the active team for the list response.
func (s *TeamService) ListMetadata(ctx context.Context) (*TeamListMetadata, error) {
	meta := &TeamListMetadata{Departments: []string{}, LastUpdated: isoNow()}
	if err := s.active(ctx).Count(&meta.TotalActiveMembers).Error; err != nil {
		return nil, fmt.Errorf("count team: %w", err)
	}

	var positions []string
	if err := s.active(ctx).Distinct("position").Pluck("position", &positions).Error; err != nil {
		return nil, fmt.Errorf("team positions: %w", err)
	}
	meta.Departments = append(meta.Departments, positions...)

	var all []string
	if err := s.active(ctx).Pluck("position", &all).Error; err != nil {
		return nil, fmt.Errorf("team positions: %w", err)
	}
	for _, p := range all {
		if leadershipPattern.MatchString(p) {
			meta.LeadershipCount++
		}
	}
	return meta, nil
}

// Get returns an active member by id.
func (s *TeamService) Get(ctx context.Context, id string) (*models.TeamMember, error) {
	n, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return nil, ErrNotFound
	}
	var m models.TeamMember
	if err := s.active(ctx).Where("id = ?", n).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get team member: %w", err)
	}
	return &m, nil
}

// Leadership picks up to eight flagged leaders, then up to eight members
// with a leadership title, then the first four members.
func (s *TeamService) Leadership(ctx context.Context) ([]models.TeamMember, error) {
	return cache.Remember(ctx, s.cache, cache.KeyTeamLeadership, s.ttl.Leadership(), s.loadLeadership)
}

func (s *TeamService) loadLeadership(ctx context.Context) ([]models.TeamMember, error) {
	var flagged []models.TeamMember
	if err := models.ActiveTeam(s.db.WithContext(ctx)).Where("is_leadership = ?", true).Limit(8).Find(&flagged).Error; err != nil {
		return nil, fmt.Errorf("flagged leadership: %w", err)
	}
	if len(flagged) > 0 {
		return flagged, nil
	}

	var members []models.TeamMember
	if err := models.ActiveTeam(s.db.WithContext(ctx)).Find(&members).Error; err != nil {
		return nil, fmt.Errorf("active team: %w", err)
	}
	titled := make([]models.TeamMember, 0, 8)
	for _, m := range members {
		if leadershipTitlePattern.MatchString(m.Position) {
			titled = append(titled, m)
			if len(titled) == 8 {
				break
			}
		}
	}
	if len(titled) > 0 {
		return titled, nil
	}
	if len(members) > 4 {
		members = members[:4]
	}
	return members, nil
}

// Highlights picks up to four flagged leaders, otherwise the four most
// experienced members.
func (s *TeamService) Highlights(ctx context.Context) ([]models.TeamMember, error) {
	var items []models.TeamMember
	if err := models.ActiveTeam(s.db.WithContext(ctx)).Where("is_leadership = ?", true).Limit(4).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("team highlights: %w", err)
	}
	if len(items) > 0 {
		return items, nil
	}
	if err := s.active(ctx).Order("years_experience DESC, display_order ASC, name ASC").Limit(4).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("team highlights: %w", err)
	}
	return items, nil
}

// Featured picks up to four members with a lead, director or manager
// title for the homepage, falling back to the first four members.
func (s *TeamService) Featured(ctx context.Context) ([]models.TeamMember, error) {
	var items []models.TeamMember
	clauses := make([]string, 0, 3)
	args := make([]interface{}, 0, 3)
	for _, kw := range []string{"lead", "director", "manager"} {
		where, arg := containsAny("position", kw)
		clauses = append(clauses, where)
		args = append(args, arg)
	}
	if err := s.active(ctx).Where("("+strings.Join(clauses, " OR ")+")", args...).
		Order("display_order ASC").Limit(4).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("featured team: %w", err)
	}
	if len(items) > 0 {
		return items, nil
	}
	if err := s.active(ctx).Order("display_order ASC").Limit(4).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("featured team: %w", err)
	}
	return items, nil
}

func (s *TeamService) CountActive(ctx context.Context) (int64, error) {
	var n int64
	err := s.active(ctx).Count(&n).Error
	return n, err
}

func (s *TeamService) Departments(ctx context.Context) (*TeamDepartments, error) {
	return cache.Remember(ctx, s.cache, cache.KeyTeamDepartments, s.ttl.Stats(), s.loadDepartments)
}

func (s *TeamService) loadDepartments(ctx context.Context) (*TeamDepartments, error) {
	var departments []string
	if err := s.active(ctx).Where("department IS NOT NULL AND department <> ''").
		Distinct("department").Pluck("department", &departments).Error; err != nil {
		return nil, fmt.Errorf("team departments: %w", err)
	}
	var positions []string
	if err := s.active(ctx).Distinct("position").Pluck("position", &positions).Error; err != nil {
		return nil, fmt.Errorf("team positions: %w", err)
	}

	sort.Strings(departments)
	sort.Strings(positions)
	return &TeamDepartments{
		Departments: nonNilStrings(departments),
		Roles:       RoleKeywords(positions),
		Positions:   nonNilStrings(positions),
	}, nil
}

// RoleKeywords extracts title-cased words longer than two letters from
// positions, skipping filler words, plus "all".
func RoleKeywords(positions []string) []string {
	set := map[string]bool{"all": true}
	for _, p := range positions {
		for _, word := range roleWordPattern.FindAllString(strings.ToLower(p), -1) {
			if len([]rune(word)) > 2 && !roleStopWords[word] {
				set[titleWord(word)] = true
			}
		}
	}
	out := make([]string, 0, len(set))
	for w := range set {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

func titleWord(word string) string {
	r := []rune(word)
	return strings.ToUpper(string(r[:1])) + string(r[1:])
}

func (s *TeamService) Stats(ctx context.Context) (*TeamStats, error) {
	return cache.Remember(ctx, s.cache, cache.KeyTeamStats, s.ttl.List(), s.computeStats)
}

func (s *TeamService) computeStats(ctx context.Context) (*TeamStats, error) {
	var members []models.TeamMember
	if err := s.active(ctx).Find(&members).Error; err != nil {
		return nil, fmt.Errorf("team stats: %w", err)
	}

	stats := &TeamStats{Departments: DepartmentSummary{List: []string{}}, LastUpdated: isoNow()}
	seen := map[string]bool{}
	totalYears := 0
	for _, m := range members {
		stats.TotalMembers++
		if m.IsLeadership {
			stats.LeadershipCount++
		}
		if m.Department != "" && !seen[m.Department] {
			seen[m.Department] = true
			stats.Departments.List = append(stats.Departments.List, m.Department)
		}
		switch {
		case m.YearsExperience < 3:
			stats.ExperienceDistribution.Junior++
		case m.YearsExperience < 7:
			stats.ExperienceDistribution.MidLevel++
		default:
			stats.ExperienceDistribution.Senior++
		}
		totalYears += m.YearsExperience
		stats.SkillsCount += len(m.Skills)
	}
	stats.Departments.Count = len(stats.Departments.List)
	if len(members) > 0 {
		stats.AvgExperience = float64(totalYears) / float64(len(members))
	}
	return stats, nil
}

// InvalidateTeam drops cached team aggregates after an edit.
func (s *TeamService) InvalidateTeam(ctx context.Context) {
	cache.Invalidate(ctx, s.cache, cache.KeyTeamStats, cache.KeyTeamLeadership, cache.KeyTeamDepartments, cache.KeyHomepage)
}

func nonNilStrings(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
