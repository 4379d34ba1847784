package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/ghgantt/internal/app"
	"github.com/alexanderramin/ghgantt/internal/diff"
	"github.com/alexanderramin/ghgantt/internal/domain"
	"github.com/alexanderramin/ghgantt/internal/github"
)

// pushRun applies one change set against the remote. It mutates the local
// forest in place as identifiers are assigned.
type pushRun struct {
	gateway github.Gateway
	repo    github.Repo
	policy  domain.OrphanPolicy
	local   *domain.Container
	pacer   *pacer
	result  *app.PushResult

	// ids maps issue numbers to node ids for parent lookups.
	ids map[int]string

	// abortErr is set once a fatal remote error stops the pass.
	abortErr error
}

func newPushRun(gateway github.Gateway, req app.PushRequest, local, remote *domain.Container, result *app.PushResult) *pushRun {
	policy := req.OrphanPolicy
	if policy == "" {
		policy = domain.OrphanRecreate
	}
	ids := make(map[int]string)
	for _, item := range domain.Flatten(remote.Items) {
		if item.Number > 0 && item.ExternalID != "" {
			ids[item.Number] = item.ExternalID
		}
	}
	return &pushRun{
		gateway: gateway,
		repo:    repoOf(req.Target),
		policy:  policy,
		local:   local,
		pacer:   newPacer(req.Delay),
		result:  result,
		ids:     ids,
	}
}

func (r *pushRun) applyAll(ctx context.Context, changes diff.ChangeSet) {
	for _, ch := range changes {
		if r.abortErr != nil {
			r.record(ch, domain.OutcomePending, "not attempted")
			continue
		}
		before := len(r.result.Outcomes)
		r.apply(ctx, ch)
		if len(r.result.Outcomes) == before {
			r.record(ch, domain.OutcomePending, "not attempted")
		}
	}
}

func (r *pushRun) apply(ctx context.Context, ch diff.Change) {
	switch ch.Kind {
	case domain.ChangeCreate:
		r.create(ctx, ch, 0)
	case domain.ChangeOrphaned:
		switch r.policy {
		case domain.OrphanSkip:
			r.skip(ch, app.EventInfo)
		case domain.OrphanWarn:
			r.skip(ch, app.EventWarn)
		default:
			r.create(ctx, ch, ch.Item.Number)
		}
	case domain.ChangeUpdate:
		r.update(ctx, ch)
	}
}

// create opens the issue, places it on the board and links it under its
// parent. staleNumber is the missing number an orphan is recreated from.
func (r *pushRun) create(ctx context.Context, ch diff.Change, staleNumber int) {
	item := ch.Item
	if staleNumber > 0 {
		item.Number = 0
		item.ExternalID = ""
		item.ContainerItemID = nil
		item.URL = nil
	}

	if !r.wait(ctx) {
		return
	}
	rec, err := r.gateway.CreateItem(ctx, r.repo, github.CreateItemInput{
		Title:     item.Title,
		Body:      item.DescriptionText(),
		Labels:    item.Labels,
		Assignees: item.Assignees,
		Milestone: item.MilestoneTitle(),
	})
	if err != nil {
		r.failed(ch, "create issue", err)
		return
	}

	item.Number = rec.Number
	item.ExternalID = rec.ID
	item.URL = domain.StrPtr(rec.URL)
	r.ids[item.Number] = item.ExternalID

	msg := fmt.Sprintf("created #%d %s", item.Number, item.Title)
	if staleNumber > 0 {
		msg = fmt.Sprintf("recreated #%d as #%d %s", staleNumber, item.Number, item.Title)
	}
	r.result.Created++
	r.record(ch, domain.OutcomeCreated, msg)
	r.event(app.EventInfo, ch.Key, item.Number, msg)

	if m := item.MilestoneTitle(); m != "" && rec.Milestone == "" {
		r.event(app.EventWarn, ch.Key, item.Number, fmt.Sprintf("milestone %q not found; #%d created without it", m, item.Number))
	}

	if item.IsClosed() {
		if !r.wait(ctx) {
			return
		}
		closed := domain.StateClosed
		if _, err := r.gateway.UpdateItem(ctx, r.repo, item.Number, github.ItemUpdate{State: &closed}); err != nil {
			if !r.warnOrAbort(ch, fmt.Sprintf("closing #%d", item.Number), err) {
				return
			}
		}
	}

	if !r.addToBoard(ctx, ch) {
		return
	}
	r.linkToParent(ctx, ch)
}

func (r *pushRun) addToBoard(ctx context.Context, ch diff.Change) bool {
	item := ch.Item
	if r.local.ID == "" {
		return true
	}
	if !r.wait(ctx) {
		return false
	}
	memberID, err := r.gateway.AddItemToContainer(ctx, r.local.ID, item.ExternalID)
	if err != nil {
		return r.warnOrAbort(ch, fmt.Sprintf("adding #%d to the project", item.Number), err)
	}
	item.ContainerItemID = &memberID

	if item.StartDate != nil && !r.setDate(ctx, ch, r.local.StartDateFieldID, item.StartDate, "start date") {
		return false
	}
	if item.EndDate != nil && !r.setDate(ctx, ch, r.local.EndDateFieldID, item.EndDate, "end date") {
		return false
	}
	return true
}

func (r *pushRun) linkToParent(ctx context.Context, ch diff.Change) {
	item, parent := ch.Item, ch.Parent
	if parent == nil {
		return
	}
	parentID := r.ids[parent.Number]
	if parent.Number == 0 || parentID == "" {
		r.event(app.EventWarn, ch.Key, item.Number,
			fmt.Sprintf("parent %q has no issue yet; #%d not linked", parent.Title, item.Number))
		return
	}

	n := parent.Number
	item.ParentNumber = &n
	r.link(ctx, ch.Key, parentID, item)
}

// link attaches item under parentID and reports whether the pass may go on.
func (r *pushRun) link(ctx context.Context, key, parentID string, item *domain.WorkItem) bool {
	if !r.wait(ctx) {
		return false
	}
	if err := r.gateway.LinkSubItem(ctx, parentID, item.ExternalID); err != nil {
		return r.warnOrAbortKey(key, item.Number, fmt.Sprintf("linking #%d", item.Number), err)
	}
	r.result.Linked++
	r.event(app.EventInfo, key, item.Number, fmt.Sprintf("linked #%d under #%d", item.Number, domain.IntFromPtrWithDefault(0, item.ParentNumber)))
	return true
}

func (r *pushRun) update(ctx context.Context, ch diff.Change) {
	item := ch.Item

	if !r.wait(ctx) {
		return
	}
	current, err := r.gateway.GetItem(ctx, r.repo, item.Number)
	if err != nil {
		r.failed(ch, fmt.Sprintf("fetching #%d", item.Number), err)
		return
	}
	if item.ExternalID == "" {
		item.ExternalID = current.ID
	}
	if item.URL == nil {
		item.URL = domain.StrPtr(current.URL)
	}
	if item.ContainerItemID == nil && ch.Remote != nil {
		item.ContainerItemID = ch.Remote.ContainerItemID
	}

	upd := issuePatch(ch)
	if !upd.IsEmpty() {
		if !r.wait(ctx) {
			return
		}
		if _, err := r.gateway.UpdateItem(ctx, r.repo, item.Number, upd); err != nil {
			r.failed(ch, fmt.Sprintf("updating #%d", item.Number), err)
			return
		}
	}

	names := make([]string, 0, len(ch.Fields))
	for _, f := range ch.Fields {
		names = append(names, f.Field)
	}
	msg := fmt.Sprintf("updated #%d (%s)", item.Number, strings.Join(names, ", "))
	r.result.Updated++
	r.record(ch, domain.OutcomeUpdated, msg)
	r.event(app.EventInfo, ch.Key, item.Number, msg)

	if ch.HasField(diff.FieldStartDate) || ch.HasField(diff.FieldEndDate) {
		if item.ContainerItemID == nil {
			r.event(app.EventWarn, ch.Key, item.Number, fmt.Sprintf("#%d is not on the project; dates not pushed", item.Number))
			return
		}
	}
	if ch.HasField(diff.FieldStartDate) && !r.setDate(ctx, ch, r.local.StartDateFieldID, item.StartDate, "start date") {
		return
	}
	if ch.HasField(diff.FieldEndDate) {
		r.setDate(ctx, ch, r.local.EndDateFieldID, item.EndDate, "end date")
	}
}

// issuePatch carries only the changed issue fields. Dates live on the board
// and are written separately.
func issuePatch(ch diff.Change) github.ItemUpdate {
	item := ch.Item
	var upd github.ItemUpdate
	if ch.HasField(diff.FieldTitle) {
		title := item.Title
		upd.Title = &title
	}
	if ch.HasField(diff.FieldBody) {
		body := item.DescriptionText()
		upd.Body = &body
	}
	if ch.HasField(diff.FieldState) {
		state := item.State
		if state == "" {
			state = domain.StateOpen
		}
		upd.State = &state
	}
	if ch.HasField(diff.FieldLabels) {
		labels := item.Labels
		upd.Labels = &labels
	}
	if ch.HasField(diff.FieldAssignees) {
		assignees := item.Assignees
		upd.Assignees = &assignees
	}
	return upd
}

// setDate writes one board date. Unknown fields or board items are skipped.
func (r *pushRun) setDate(ctx context.Context, ch diff.Change, fieldID *string, date *time.Time, what string) bool {
	item := ch.Item
	if fieldID == nil || item.ContainerItemID == nil {
		return true
	}
	if !r.wait(ctx) {
		return false
	}
	if err := r.gateway.SetDateField(ctx, r.local.ID, *item.ContainerItemID, *fieldID, date); err != nil {
		return r.warnOrAbort(ch, fmt.Sprintf("setting %s on #%d", what, item.Number), err)
	}
	return true
}

func (r *pushRun) skip(ch diff.Change, level app.EventLevel) {
	msg := fmt.Sprintf("#%d %q not found on the project; skipped", ch.Number(), ch.Item.Title)
	r.result.Skipped++
	r.record(ch, domain.OutcomeSkipped, msg)
	r.event(level, ch.Key, ch.Number(), msg)
}

// enforceSubLinks links every parent/child edge of the local forest that is
// missing remotely. Each parent's existing links are fetched once.
func (r *pushRun) enforceSubLinks(ctx context.Context) {
	_ = domain.Walk(r.local.Items, func(parent, _ *domain.WorkItem, _ int) error {
		if r.abortErr != nil {
			return domain.ErrStopWalk
		}
		parentID := r.idOf(parent)
		if parentID == "" {
			return nil
		}
		var children []*domain.WorkItem
		for _, c := range parent.Children {
			if r.idOf(c) != "" {
				children = append(children, c)
			}
		}
		if len(children) == 0 {
			return nil
		}

		key := strconv.Itoa(parent.Number)
		if !r.wait(ctx) {
			return domain.ErrStopWalk
		}
		existing, err := r.gateway.FetchChildLinks(ctx, parentID)
		if err != nil {
			if !r.warnOrAbortKey(key, parent.Number, fmt.Sprintf("fetching sub-issues of #%d", parent.Number), err) {
				return domain.ErrStopWalk
			}
			return nil
		}
		linked := make(map[string]bool, len(existing))
		for _, e := range existing {
			linked[e.ID] = true
		}

		for _, c := range children {
			if linked[r.idOf(c)] {
				continue
			}
			n := parent.Number
			c.ParentNumber = &n
			if c.ExternalID == "" {
				c.ExternalID = r.idOf(c)
			}
			if !r.link(ctx, strconv.Itoa(c.Number), parentID, c) {
				return domain.ErrStopWalk
			}
		}
		return nil
	})
}

func (r *pushRun) idOf(item *domain.WorkItem) string {
	if item.ExternalID != "" {
		return item.ExternalID
	}
	if item.Number > 0 {
		return r.ids[item.Number]
	}
	return ""
}

func (r *pushRun) wait(ctx context.Context) bool {
	if err := r.pacer.Wait(ctx); err != nil {
		r.abort(fmt.Errorf("push interrupted: %w", err))
		return false
	}
	return true
}

// failed records a change that could not be applied. A fatal error also
// stops the pass.
func (r *pushRun) failed(ch diff.Change, what string, err error) {
	msg := fmt.Sprintf("%s: %v", what, err)
	r.result.Failed++
	r.record(ch, domain.OutcomeFailed, msg)
	r.event(app.EventError, ch.Key, ch.Item.Number, msg)
	if github.IsFatal(err) {
		r.abort(remoteError("push", err))
	}
}

func (r *pushRun) warnOrAbort(ch diff.Change, what string, err error) bool {
	return r.warnOrAbortKey(ch.Key, ch.Item.Number, what, err)
}

// warnOrAbortKey turns a secondary failure into a warning, or aborts the
// pass when the error is fatal. It reports whether the pass may go on.
func (r *pushRun) warnOrAbortKey(key string, number int, what string, err error) bool {
	if github.IsFatal(err) {
		r.event(app.EventError, key, number, fmt.Sprintf("%s: %v", what, err))
		r.abort(remoteError("push", err))
		return false
	}
	r.event(app.EventWarn, key, number, fmt.Sprintf("%s: %v", what, domain.WrapError(domain.KindRemoteMutation, "", err)))
	return true
}

func (r *pushRun) abort(err error) {
	if r.abortErr != nil {
		return
	}
	r.abortErr = err
	r.result.Aborted = true
	r.event(app.EventError, "", 0, "push aborted: "+err.Error())
}

func (r *pushRun) record(ch diff.Change, outcome domain.Outcome, msg string) {
	number := ch.Number()
	if ch.Item != nil && ch.Item.Number > 0 {
		number = ch.Item.Number
	}
	r.result.Outcomes = append(r.result.Outcomes, app.ChangeOutcome{
		Key:     ch.Key,
		Number:  number,
		Kind:    ch.Kind,
		Outcome: outcome,
		Message: msg,
	})
}

func (r *pushRun) event(level app.EventLevel, key string, number int, msg string) {
	r.result.Events = append(r.result.Events, app.SyncEvent{
		Level:   level,
		Key:     key,
		Number:  number,
		Message: msg,
	})
}
