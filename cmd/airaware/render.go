package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/i474232898/airaware/internal/airquality"
	"github.com/i474232898/airaware/internal/pipeline"
	"github.com/i474232898/airaware/internal/session"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7f8c8d"))
	doStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#2ecc71"))
	avoidStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#e74c3c"))
)

func tierStyle(t airquality.Tier) lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(t.Color()))
}

func renderReport(w io.Writer, r pipeline.Report) {
	fmt.Fprintln(w, titleStyle.Render(r.Label))
	fmt.Fprintf(w, "AQI %s  %s\n",
		tierStyle(r.Tier).Render(fmt.Sprint(r.Reading.AQI)),
		tierStyle(r.Tier).Render(r.TierLabel))
	fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("PM2.5 %.1f µg/m³  PM10 %.1f µg/m³", r.Reading.PM2_5, r.Reading.PM10)))
	fmt.Fprintln(w)
	fmt.Fprintln(w, doStyle.Render("Recommended: "+strings.Join(r.Guidance.Recommended, ", ")))
	fmt.Fprintln(w, avoidStyle.Render("Avoid: "+strings.Join(r.Guidance.Avoid, ", ")))
}

func renderRankings(w io.Writer, ranked []airquality.RankedCityEntry) {
	fmt.Fprintln(w, titleStyle.Render("Most polluted right now"))
	for i, e := range ranked {
		fmt.Fprintf(w, "%2d. %-14s %s\n", i+1, e.Name, tierStyle(e.Tier).Render(fmt.Sprintf("%3d  %s", e.AQI, e.Tier.Label())))
	}
}

func renderExercises(w io.Writer, v session.View) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Exercises: %s", v.Category)))
	if len(v.Exercises) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("no exercises in this category"))
	}
	for _, ex := range v.Exercises {
		mark := "[ ]"
		if ex.Done {
			mark = "[x]"
		}
		fmt.Fprintf(w, "%s %s %-16s %s  %s\n", mark, ex.Icon, ex.Name, mutedStyle.Render(ex.Duration), mutedStyle.Render(ex.ID))
	}
	fmt.Fprintf(w, "%s %d/%d\n", progressBar(v.Progress, 20), v.CompletedCount, v.Goal)
}

func progressBar(p float64, width int) string {
	filled := int(p * float64(width))
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}
