package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/goalplan/internal/domain"
	"github.com/alexanderramin/goalplan/internal/generation"
	"github.com/alexanderramin/goalplan/internal/scheduler"
	"github.com/alexanderramin/goalplan/internal/service"
	"github.com/alexanderramin/goalplan/internal/validation"
)

// FormatTasks renders tasks in plan order with their index, so a row can be
// passed straight to "regenerate --index".
func FormatTasks(tasks []domain.Task) string {
	if len(tasks) == 0 {
		return Dim("  No tasks.") + "\n"
	}
	headers := []string{"#", "Date", "Time", "Goal", "Title", "Difficulty", "Est"}
	rows := make([][]string, 0, len(tasks))
	for i, t := range tasks {
		rows = append(rows, []string{
			Dim(strconv.Itoa(i)),
			t.Date.String(),
			fmt.Sprintf("%s-%s", t.StartTime, t.EndTime),
			StyleBlue.Render(t.GoalID),
			t.Title,
			DifficultyLabel(t.Difficulty),
			fmt.Sprintf("%dm", t.EstimatedDurationMinutes),
		})
	}
	return RenderTable(headers, rows)
}

// FormatWindows renders resolved availability, one row per date.
func FormatWindows(windows []domain.AvailableDateEntry) string {
	if len(windows) == 0 {
		return Dim("  No available dates in the goal window.") + "\n"
	}
	headers := []string{"Date", "Day", "Slots", "Minutes"}
	rows := make([][]string, 0, len(windows))
	for _, w := range windows {
		slots := make([]string, 0, len(w.Slots))
		total := 0
		for _, s := range w.Slots {
			slots = append(slots, s.String())
			total += s.DurationMin()
		}
		rows = append(rows, []string{
			w.Date.String(),
			string(w.Weekday),
			strings.Join(slots, ", "),
			strconv.Itoa(total),
		})
	}
	return RenderTable(headers, rows)
}

func FormatScheduleWarnings(ws []scheduler.ScheduleWarning) string {
	var b strings.Builder
	for _, w := range ws {
		fmt.Fprintf(&b, "  %s %s %s\n", StyleYellow.Render("● WARN"), Dim(string(w.Code)), w.Message)
	}
	return b.String()
}

// FormatViolations lists findings in the order the validator reported them.
func FormatViolations(vs []validation.Violation) string {
	if len(vs) == 0 {
		return StyleGreen.Render("  ✓ No violations.") + "\n"
	}
	headers := []string{"Severity", "Field", "Code", "Message"}
	rows := make([][]string, 0, len(vs))
	for _, v := range vs {
		rows = append(rows, []string{
			SeverityIndicator(v.Severity),
			v.Field,
			string(v.Code),
			v.Message,
		})
	}
	return RenderTable(headers, rows)
}

// FormatGeneration renders a generated plan with its run summary.
func FormatGeneration(res *service.GeneratePlanResult) string {
	var b strings.Builder
	b.WriteString(Header("Generated Plan") + "\n")
	fmt.Fprintf(&b, "  Run:       %s\n", Dim(res.RunID))
	fmt.Fprintf(&b, "  Windows:   %d\n", res.WindowsCount)
	fmt.Fprintf(&b, "  Attempts:  %d\n", res.Attempts)
	fmt.Fprintf(&b, "  Model:     %s\n", formatParams(res.Params))
	b.WriteString("\n")
	b.WriteString(FormatTasks(res.Plan.Tasks))
	if len(res.Warnings) > 0 {
		b.WriteString("\n" + FormatViolations(res.Warnings))
	}
	if len(res.Schedule) > 0 {
		b.WriteString("\n" + FormatScheduleWarnings(res.Schedule))
	}
	return b.String()
}

// FormatRegeneration highlights the replaced row inside the updated plan.
func FormatRegeneration(index int, res *service.RegenerateResult) string {
	var b strings.Builder
	b.WriteString(Header("Regenerated Task") + "\n")
	t := res.Task
	fmt.Fprintf(&b, "  %s  %s %s-%s  %s\n",
		Bold(fmt.Sprintf("#%d", index)), t.Date, t.StartTime, t.EndTime, t.Title)
	if t.Description != "" {
		fmt.Fprintf(&b, "      %s\n", Dim(t.Description))
	}
	b.WriteString("\n")
	b.WriteString(FormatTasks(res.Plan.Tasks))
	if len(res.Warnings) > 0 {
		b.WriteString("\n" + FormatViolations(res.Warnings))
	}
	return b.String()
}

// FormatPlayground renders a prompt run as a box with a usage footer.
func FormatPlayground(res *generation.PromptResult) string {
	footer := fmt.Sprintf("%s · %s · %dms · %d+%d tokens",
		res.Model, res.FinishReason, res.LatencyMs,
		res.Usage.PromptTokens, res.Usage.CompletionTokens)
	return RenderBox("Playground", res.Content+"\n\n"+Dim(footer)) + "\n"
}

func formatParams(p generation.Params) string {
	model := p.Model
	if model == "" {
		model = "(provider default)"
	}
	return fmt.Sprintf("%s %s", model, Dim(fmt.Sprintf("temp=%g schema=%s output=%s", p.Temperature, p.Schema, p.StructuredOutput)))
}
