package service

import (
	"math"
	"sort"

	"github.com/taskdeck/taskdeck/internal/model"
)

// StatusCount is one slice of the dashboard status chart.
type StatusCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// ProjectProgress summarizes completion for one project.
type ProjectProgress struct {
	Project     string `json:"project"`
	Done        int    `json:"done"`
	Total       int    `json:"total"`
	PercentDone int    `json:"percent_done"`
}

// PartnerLoad is the number of visible tasks assigned to one partner.
type PartnerLoad struct {
	PartnerID string `json:"partner_id"`
	Name      string `json:"name"`
	Count     int    `json:"count"`
}

// Stats holds the dashboard aggregates derived from a task list.
type Stats struct {
	Total           int               `json:"total"`
	Completed       int               `json:"completed"`
	InProgress      int               `json:"in_progress"`
	Pending         int               `json:"pending"`
	StatusData      []StatusCount     `json:"status_data"`
	ProjectProgress []ProjectProgress `json:"project_progress"`
	PartnerLoad     []PartnerLoad     `json:"partner_load"`
}

// ComputeStats derives dashboard aggregates from a task list. Pure and
// deterministic: identical inputs always yield identical output, and neither
// slice is mutated. Pass a nil partner roster for non-admin views; the
// partner load section is then empty.
func ComputeStats(tasks []*model.Task, partners []*model.Profile) Stats {
	stats := Stats{
		Total:           len(tasks),
		StatusData:      make([]StatusCount, 0, 3),
		ProjectProgress: []ProjectProgress{},
		PartnerLoad:     []PartnerLoad{},
	}

	projectDone := map[string]int{}
	projectTotal := map[string]int{}
	assignedCount := map[string]int{}

	for _, t := range tasks {
		switch t.Status {
		case model.StatusCompleted:
			stats.Completed++
		case model.StatusInProgress:
			stats.InProgress++
		case model.StatusPending:
			stats.Pending++
		}
		projectTotal[t.Project]++
		if t.Status == model.StatusCompleted {
			projectDone[t.Project]++
		}
		if t.AssignedTo != nil {
			assignedCount[*t.AssignedTo]++
		}
	}

	// Fixed order for the status chart
	stats.StatusData = append(stats.StatusData,
		StatusCount{Label: model.StatusPending, Count: stats.Pending},
		StatusCount{Label: model.StatusInProgress, Count: stats.InProgress},
		StatusCount{Label: model.StatusCompleted, Count: stats.Completed},
	)

	projects := make([]string, 0, len(projectTotal))
	for p := range projectTotal {
		projects = append(projects, p)
	}
	sort.Strings(projects)
	for _, p := range projects {
		total := projectTotal[p]
		done := projectDone[p]
		percent := 0
		if total > 0 {
			percent = int(math.Round(float64(done) / float64(total) * 100))
		}
		stats.ProjectProgress = append(stats.ProjectProgress, ProjectProgress{
			Project:     p,
			Done:        done,
			Total:       total,
			PercentDone: percent,
		})
	}

	for _, partner := range partners {
		stats.PartnerLoad = append(stats.PartnerLoad, PartnerLoad{
			PartnerID: partner.ID,
			Name:      partner.Name,
			Count:     assignedCount[partner.ID],
		})
	}

	return stats
}
