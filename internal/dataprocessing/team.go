package dataprocessing

import (
	"sort"
	"strings"

	"taskdash/pkg/contracts/domain"
)

// SpecializationMatrix pivots task counts with assignees as rows and content
// types as columns, zero-filled.
func SpecializationMatrix(tasks []domain.Task) domain.Matrix {
	members := map[string]struct{}{}
	types := map[string]struct{}{}
	for _, t := range tasks {
		if t.AssignedTo == "" || t.ContentType == "" {
			continue
		}
		members[t.AssignedTo] = struct{}{}
		types[t.ContentType] = struct{}{}
	}

	columns := sortedKeys(types)
	return pivot(tasks, sortedKeys(members), columns, columns, func(t domain.Task) (string, string, bool) {
		return t.AssignedTo, t.ContentType, t.AssignedTo != "" && t.ContentType != ""
	})
}

// MemberWorkloads summarizes each assignee's tasks, busiest first. Role and
// team come from the team member table when the names match.
func MemberWorkloads(tasks []domain.Task, members []domain.TeamMember) []domain.MemberWorkload {
	profiles := make(map[string]domain.TeamMember, len(members))
	for _, m := range members {
		profiles[strings.ToLower(m.Name)] = m
	}

	type acc struct {
		total, completed, active int
		days                     mean
	}
	stats := map[string]*acc{}
	for _, t := range tasks {
		if t.AssignedTo == "" {
			continue
		}
		a, ok := stats[t.AssignedTo]
		if !ok {
			a = &acc{}
			stats[t.AssignedTo] = a
		}
		a.total++
		if t.Status.IsCompleted() {
			a.completed++
		}
		if t.Status.IsActive() {
			a.active++
		}
		if d, ok := finishedDays(t); ok {
			a.days.add(float64(d))
		}
	}

	out := make([]domain.MemberWorkload, 0, len(stats))
	for name, a := range stats {
		profile := profiles[strings.ToLower(name)]
		out = append(out, domain.MemberWorkload{
			Member:            name,
			Role:              profile.Role,
			Team:              profile.Team,
			Total:             a.total,
			Completed:         a.completed,
			Active:            a.active,
			AvgCompletionDays: a.days.ptr(),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Member < out[j].Member
	})
	return out
}

// Priorities counts content types per priority level. Every level is listed,
// most urgent first. Content types whose priority text mapped to no level are
// reported in Unmapped instead of being dropped.
func Priorities(contentTypes []domain.ContentType) domain.PriorityDistribution {
	counts := map[domain.PriorityLevel]int{}
	dist := domain.PriorityDistribution{
		Levels:       make([]domain.CountEntry, 0, 4),
		ContentTypes: make([]domain.PriorityAssignment, 0, len(contentTypes)),
		Unmapped:     []string{},
	}

	for _, ct := range contentTypes {
		level := ct.Priority
		if level == "" {
			level = domain.PriorityUnknown
		}
		dist.ContentTypes = append(dist.ContentTypes, domain.PriorityAssignment{
			ContentType: ct.Name,
			Priority:    level,
			Note:        ct.PriorityNote,
		})
		if level == domain.PriorityUnknown {
			dist.Unmapped = append(dist.Unmapped, ct.Name)
			continue
		}
		counts[level]++
	}

	for _, level := range domain.PriorityLevels() {
		dist.Levels = append(dist.Levels, domain.CountEntry{Name: string(level), Count: counts[level]})
	}
	sort.Slice(dist.ContentTypes, func(i, j int) bool { return dist.ContentTypes[i].ContentType < dist.ContentTypes[j].ContentType })
	sort.Strings(dist.Unmapped)
	return dist
}
