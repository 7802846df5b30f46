package render

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jonathan/teammatch/internal/api"
	"github.com/jonathan/teammatch/internal/router"
	"github.com/jonathan/teammatch/internal/toast"
	"github.com/jonathan/teammatch/internal/types"
)

// Loading prints the placeholder shown while a page fetches.
func (p *Printer) Loading(what string) {
	p.Line("Loading %s...", what)
}

// Empty prints the empty-state message.
func (p *Printer) Empty(what string) {
	p.printBox(strings.ToUpper(what), "Nothing here yet.")
}

// Error prints the inline error panel. A 404 gets its own wording.
func (p *Printer) Error(title string, err error, retry string) {
	if errors.Is(err, api.ErrNotFound) {
		p.printBox(strings.ToUpper(title), "Not found.\nIt may have been deleted.")
		return
	}
	content := "Something went wrong:\n" + err.Error()
	if retry != "" {
		content += "\n\nRetry: " + retry
	}
	p.printBox("ERROR: "+strings.ToUpper(title), content)
}

// Toast prints one notification on a single line.
func (p *Printer) Toast(t toast.Toast) {
	marker := map[toast.Type]string{
		toast.Success: "✓",
		toast.Error:   "✗",
		toast.Warning: "!",
		toast.Info:    "i",
	}[t.Type]
	p.Line("[%s] %s", marker, t.Message)
}

// User prints the signed-in account.
func (p *Printer) User(u *types.User) {
	if u == nil {
		p.printBox("SESSION", "Not signed in.")
		return
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Username: %s\n", u.Username)
	if u.Nickname != "" {
		fmt.Fprintf(&sb, "Nickname: %s\n", u.Nickname)
	}
	if u.Email != "" {
		fmt.Fprintf(&sb, "Email:    %s\n", u.Email)
	}
	if u.ID != 0 {
		fmt.Fprintf(&sb, "ID:       %d\n", u.ID)
	}
	if u.IsAdmin() {
		sb.WriteString("Role:     admin\n")
	}
	p.printBox("SIGNED IN", strings.TrimSuffix(sb.String(), "\n"))
}

// Routes prints the route table, one pattern per entry with its name and
// frame on the line below.
func (p *Printer) Routes(routes []router.Route) {
	var sb strings.Builder
	for _, r := range routes {
		frame := "bare"
		if r.Layout {
			frame = "layout"
			if !r.Footer {
				frame = "layout, no footer"
			}
		}
		fmt.Fprintf(&sb, "%s\n    %s (%s)\n", r.Pattern, r.Name, frame)
	}
	p.printBox("ROUTES", strings.TrimSuffix(sb.String(), "\n"))
}

// Postings prints the project list.
func (p *Printer) Postings(postings []types.ProjectPosting) {
	if len(postings) == 0 {
		p.Empty("projects")
		return
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d projects\n\n", len(postings))
	for i, post := range postings {
		fmt.Fprintf(&sb, "#%d  %s\n", post.ID, post.Title)
		fmt.Fprintf(&sb, "    %s\n", post.Intro)
		fmt.Fprintf(&sb, "    by %s, deadline %s, %d seats\n", post.Username, post.Deadline, post.TotalHeadcount())
		if len(post.Tags) > 0 {
			fmt.Fprintf(&sb, "    [%s]\n", strings.Join(post.Tags, ", "))
		}
		if i < len(postings)-1 {
			sb.WriteString("\n")
		}
	}
	p.printBox("PROJECTS", strings.TrimSuffix(sb.String(), "\n"))
}

// Posting prints one project. ownerControls only adds a hint line; the
// server decides whether the owner actions are allowed.
func (p *Printer) Posting(post *types.ProjectPosting, ownerControls bool) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n", post.Intro)
	sb.WriteString("\n")
	for _, line := range strings.Split(post.Description, "\n") {
		fmt.Fprintf(&sb, "%s\n", line)
	}
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "Owner:      %s\n", post.Username)
	fmt.Fprintf(&sb, "Deadline:   %s\n", post.Deadline)
	fmt.Fprintf(&sb, "Work style: %s\n", strings.ToLower(string(post.WorkStyle)))
	if len(post.Tags) > 0 {
		fmt.Fprintf(&sb, "Tags:       %s\n", strings.Join(post.Tags, ", "))
	}
	if post.ContactValue != "" {
		fmt.Fprintf(&sb, "Contact:    %s %s\n", post.ContactMethod, post.ContactValue)
	}
	sb.WriteString("Positions:\n")
	for _, pos := range post.Positions {
		fmt.Fprintf(&sb, "  • %s x%d\n", pos.Role, pos.Headcount)
	}
	if ownerControls {
		sb.WriteString("\nYou own this project: edit, delete, review applicants.")
	}
	p.printBox(fmt.Sprintf("#%d %s", post.ID, post.Title), strings.TrimSuffix(sb.String(), "\n"))
}

// Profiles prints the profile list.
func (p *Printer) Profiles(profiles []types.UserProfile) {
	if len(profiles) == 0 {
		p.Empty("profiles")
		return
	}
	var sb strings.Builder
	for i, prof := range profiles {
		fmt.Fprintf(&sb, "#%d  %s\n", prof.ID, prof.Username)
		fmt.Fprintf(&sb, "    %s\n", prof.Intro)
		if len(prof.Skills) > 0 {
			shown := min(len(prof.Skills), maxItemsToShow)
			fmt.Fprintf(&sb, "    [%s]\n", strings.Join(prof.Skills[:shown], ", "))
		}
		if i < len(profiles)-1 {
			sb.WriteString("\n")
		}
	}
	p.printBox("PEOPLE", strings.TrimSuffix(sb.String(), "\n"))
}

// Profile prints one profile.
func (p *Printer) Profile(prof *types.UserProfile) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n\n", prof.Intro)
	for _, line := range strings.Split(prof.Bio, "\n") {
		fmt.Fprintf(&sb, "%s\n", line)
	}
	sb.WriteString("\n")
	if len(prof.Skills) > 0 {
		fmt.Fprintf(&sb, "Skills:       %s\n", strings.Join(prof.Skills, ", "))
	}
	if prof.Experience != "" {
		fmt.Fprintf(&sb, "Experience:   %s\n", prof.Experience)
	}
	if prof.Location != "" {
		fmt.Fprintf(&sb, "Location:     %s\n", prof.Location)
	}
	if prof.Availability != "" {
		fmt.Fprintf(&sb, "Availability: %s\n", prof.Availability)
	}
	if prof.ContactValue != "" {
		fmt.Fprintf(&sb, "Contact:      %s %s\n", prof.ContactMethod, prof.ContactValue)
	}
	p.printBox(prof.Username, strings.TrimSuffix(sb.String(), "\n"))
}

// Applications prints a list of applications.
func (p *Printer) Applications(title string, apps []types.Application) {
	if len(apps) == 0 {
		p.Empty(title)
		return
	}
	var sb strings.Builder
	for _, a := range apps {
		project := a.ProjectTitle
		if project == "" {
			project = fmt.Sprintf("project #%d", a.ProjectID)
		}
		fmt.Fprintf(&sb, "#%d  %s as %s [%s]\n", a.ID, project, a.AppliedPosition, a.Status)
		fmt.Fprintf(&sb, "    from %s", a.ApplicantUsername)
		if !a.AppliedAt.IsZero() {
			fmt.Fprintf(&sb, " on %s", a.AppliedAt.Format("2006-01-02"))
		}
		sb.WriteString("\n")
		if a.Message != "" {
			fmt.Fprintf(&sb, "    %q\n", a.Message)
		}
	}
	p.printBox(strings.ToUpper(title), strings.TrimSuffix(sb.String(), "\n"))
}

// Teams prints a list of teams.
func (p *Printer) Teams(teams []types.Team) {
	if len(teams) == 0 {
		p.Empty("teams")
		return
	}
	var sb strings.Builder
	for _, t := range teams {
		leader := "-"
		if l := t.Leader(); l != nil {
			leader = l.Username
		}
		state := "recruiting"
		if t.ProjectStarted {
			state = "started"
		}
		fmt.Fprintf(&sb, "#%d  %s (%d/%d, led by %s, %s)\n", t.ID, t.Name, len(t.Members), t.MaxMembers, leader, state)
	}
	p.printBox("TEAMS", strings.TrimSuffix(sb.String(), "\n"))
}

// Team prints one team and, when known, its readiness to start.
func (p *Printer) Team(t *types.Team, ready *types.StartReadiness) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Members (%d/%d):\n", len(t.Members), t.MaxMembers)
	for _, m := range t.Members {
		fmt.Fprintf(&sb, "  • %s", m.Username)
		if m.Position != "" {
			fmt.Fprintf(&sb, " - %s", m.Position)
		}
		if m.Role == types.MemberManager {
			sb.WriteString(" (leader)")
		}
		sb.WriteString("\n")
	}
	if ready != nil {
		sb.WriteString("\n")
		if ready.Ready {
			fmt.Fprintf(&sb, "Ready to start (%d/%d filled)\n", ready.Filled, ready.Required)
		} else {
			fmt.Fprintf(&sb, "Not ready (%d/%d filled)\n", ready.Filled, ready.Required)
			shown := min(len(ready.Missing), maxItemsToShow)
			for _, pos := range ready.Missing[:shown] {
				fmt.Fprintf(&sb, "  missing %s x%d\n", pos.Role, pos.Headcount)
			}
			more(&sb, len(ready.Missing), shown, "positions")
		}
	}
	if t.ProjectStarted {
		sb.WriteString("\nProject started.\n")
	}
	p.printBox(fmt.Sprintf("TEAM #%d %s", t.ID, t.Name), strings.TrimSuffix(sb.String(), "\n"))
}

// Invitations prints a list of invitations.
func (p *Printer) Invitations(invs []types.TeamInvitation) {
	if len(invs) == 0 {
		p.Empty("invitations")
		return
	}
	var sb strings.Builder
	for _, inv := range invs {
		team := inv.TeamName
		if team == "" {
			team = fmt.Sprintf("team #%d", inv.TeamID)
		}
		fmt.Fprintf(&sb, "#%d  %s invites %s to %s [%s]\n", inv.ID, inv.InviterUsername, inv.InviteeUsername, team, inv.Status)
		if inv.Message != "" {
			fmt.Fprintf(&sb, "    %q\n", inv.Message)
		}
	}
	p.printBox("INVITATIONS", strings.TrimSuffix(sb.String(), "\n"))
}

// LeaveRequests prints a team's leave requests.
func (p *Printer) LeaveRequests(lrs []types.LeaveRequest) {
	if len(lrs) == 0 {
		p.Empty("leave requests")
		return
	}
	var sb strings.Builder
	for _, lr := range lrs {
		fmt.Fprintf(&sb, "#%d  %s [%s]\n", lr.ID, lr.Username, lr.Status)
		if lr.Reason != "" {
			fmt.Fprintf(&sb, "    %q\n", lr.Reason)
		}
	}
	p.printBox("LEAVE REQUESTS", strings.TrimSuffix(sb.String(), "\n"))
}

// Assignments prints a project's tasks.
func (p *Printer) Assignments(as []types.Assignment) {
	if len(as) == 0 {
		p.Empty("tasks")
		return
	}
	var sb strings.Builder
	for _, a := range as {
		owner := a.Username
		if owner == "" {
			owner = fmt.Sprintf("user #%d", a.UserID)
		}
		fmt.Fprintf(&sb, "#%d  %s (%s)\n", a.ID, a.Title, owner)
		fmt.Fprintf(&sb, "    %s %s %d%%", a.Status, progressBar(a.Progress, 10), a.Progress)
		if !a.DueAt.IsZero() {
			fmt.Fprintf(&sb, " due %s", a.DueAt.Format("2006-01-02"))
		}
		sb.WriteString("\n")
	}
	p.printBox("TASKS", strings.TrimSuffix(sb.String(), "\n"))
}

// Reports prints weekly reports, newest last.
func (p *Printer) Reports(rs []types.WeeklyReport) {
	if len(rs) == 0 {
		p.Empty("weekly reports")
		return
	}
	var sb strings.Builder
	for i, r := range rs {
		perf := r.PerformanceData
		fmt.Fprintf(&sb, "Week %d (%s - %s)\n", r.WeekNumber, r.StartDate, r.EndDate)
		fmt.Fprintf(&sb, "  %d/%d done, %d delayed, %.0f%% complete\n",
			perf.CompletedTasks, perf.TotalTasks, perf.DelayedTasks, perf.CompletionRate)
		for _, line := range strings.Split(strings.TrimSpace(r.AIAnalysis), "\n") {
			if line != "" {
				fmt.Fprintf(&sb, "  %s\n", line)
			}
		}
		if i < len(rs)-1 {
			sb.WriteString("\n")
		}
	}
	p.printBox("WEEKLY REPORTS", strings.TrimSuffix(sb.String(), "\n"))
}

// Project prints the header of a started project.
func (p *Printer) Project(proj *types.Project) {
	content := fmt.Sprintf("Team #%d\n%s - %s", proj.TeamID, proj.ProjectStartDate, proj.ProjectEndDate)
	p.printBox(fmt.Sprintf("PROJECT #%d %s", proj.ID, proj.Title), content)
}

// MatchReason prints the explanation behind a recommendation.
func (p *Printer) MatchReason(r *types.MatchReason) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Score: %.2f\n\n", r.Score)
	for _, line := range strings.Split(r.Reason, "\n") {
		fmt.Fprintf(&sb, "%s\n", line)
	}
	p.printBox("WHY THIS MATCH", strings.TrimSuffix(sb.String(), "\n"))
}

// Progress prints one frame of the cosmetic progress animation.
//
//nolint:errcheck // writing to a terminal; errors are not recoverable
func (p *Printer) Progress(label string, percent int) {
	fmt.Fprintf(p.out, "\r%s %s %3d%%", label, progressBar(percent, 20), percent)
}

// ProgressDone ends the progress line.
//
//nolint:errcheck // writing to a terminal; errors are not recoverable
func (p *Printer) ProgressDone() {
	fmt.Fprintln(p.out)
}

func progressBar(percent, width int) string {
	percent = max(0, min(percent, 100))
	filled := percent * width / 100
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + "]"
}
