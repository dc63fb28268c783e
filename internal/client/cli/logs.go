package cli

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/policylogs/internal/client/client"
	"github.com/dmitrijs2005/policylogs/internal/client/models"
	"github.com/dmitrijs2005/policylogs/internal/client/services"
)

// Refresh reloads the first page and the tag list, then prints the logs.
func (a *App) Refresh(ctx context.Context) error {
	err := a.logs.RefreshAll(ctx)
	a.track(err)
	if err != nil {
		a.printf("error: %s\n", services.UserMessage(err))
	}
	_ = a.List(ctx)
	return err
}

// More loads the next page, if there is one.
func (a *App) More(ctx context.Context) error {
	before := a.logs.Snapshot()
	if !before.HasMore {
		a.printf("No more logs\n")
		return nil
	}
	if err := a.logs.LoadMore(ctx); err != nil {
		return a.fail(err)
	}
	a.track(nil)

	after := a.logs.Snapshot()
	if len(after.Logs) > len(before.Logs) {
		printLogList(a.out, after.Logs[len(before.Logs):])
	}
	if !after.HasMore {
		a.printf("(end of list)\n")
	}
	return nil
}

// List prints the resident collection without touching the network.
func (a *App) List(ctx context.Context) error {
	s := a.logs.Snapshot()
	if s.Seeded {
		a.printf("(offline, showing sample data)\n")
	}
	printLogList(a.out, s.Logs)
	if s.HasMore && len(s.Logs) > 0 {
		a.printf("(type 'more' for the next page)\n")
	}
	return nil
}

// idArg takes the id from args or prompts for it.
func (a *App) idArg(args []string, prompt string) (int64, error) {
	raw := ""
	if len(args) > 0 {
		raw = args[0]
	} else {
		var err error
		if raw, err = getSimpleText(a.reader, prompt, a.out); err != nil {
			return 0, err
		}
	}
	id, err := ParseID(raw)
	if err != nil {
		a.printf("error: %s\n", err)
		return 0, err
	}
	return id, nil
}

// Show fetches one log and prints it with its comments.
func (a *App) Show(ctx context.Context, args []string) error {
	id, err := a.idArg(args, "Enter log id to show")
	if err != nil {
		return err
	}
	r, err := a.logs.FetchOne(ctx, id)
	if err != nil {
		return a.fail(err)
	}
	a.track(nil)
	printLogDetail(a.out, r)
	return nil
}

// New prompts for the fields of a new log and creates it.
func (a *App) New(ctx context.Context) error {
	title, err := getSimpleText(a.reader, "Enter title", a.out)
	if err != nil {
		return err
	}
	description, err := GetMultiline(a.reader, "Enter description", a.out)
	if err != nil {
		return err
	}
	status, err := getSimpleText(a.reader, "Enter status (draft, pending, active, inactive, archived) [pending]", a.out)
	if err != nil {
		return err
	}

	if tags := a.logs.Snapshot().Tags; len(tags) > 0 {
		printTags(a.out, tags)
	}
	rawTags, err := getSimpleText(a.reader, "Enter tag ids, comma separated (optional)", a.out)
	if err != nil {
		return err
	}
	tagIDs, err := ParseIDs(rawTags)
	if err != nil {
		a.printf("error: %s\n", err)
		return err
	}

	r, err := a.logs.Create(ctx, models.NewLog{
		Title:       title,
		Description: description,
		Status:      models.Status(strings.TrimSpace(status)),
		TagIDs:      tagIDs,
	})
	if err != nil {
		return a.fail(err)
	}
	a.track(nil)
	a.printf("Created ")
	printLogLine(a.out, r)
	return nil
}

// Comment adds a comment to a log.
func (a *App) Comment(ctx context.Context, args []string) error {
	id, err := a.idArg(args, "Enter log id to comment on")
	if err != nil {
		return err
	}
	content, err := GetMultiline(a.reader, "Enter comment", a.out)
	if err != nil {
		return err
	}

	c, err := a.logs.AddComment(ctx, id, content)
	if err != nil {
		return a.fail(err)
	}
	a.track(nil)
	a.printf("Comment added\n")
	printComment(a.out, c)
	return nil
}

// Search runs a server-side search; the resident list is not changed.
func (a *App) Search(ctx context.Context, args []string) error {
	query := strings.Join(args, " ")
	if query == "" {
		var err error
		if query, err = getSimpleText(a.reader, "Enter search text", a.out); err != nil {
			return err
		}
	}

	found, err := a.logs.Search(ctx, query)
	if err != nil {
		return a.fail(err)
	}
	a.track(nil)
	printLogList(a.out, found)
	return nil
}

// Mine lists the logs created by the current user.
func (a *App) Mine(ctx context.Context) error {
	mine, err := a.logs.MyLogs(ctx)
	if err != nil {
		return a.fail(err)
	}
	a.track(nil)
	printLogList(a.out, mine)
	return nil
}

// Tags reloads and prints the tag list.
func (a *App) Tags(ctx context.Context) error {
	tags, err := a.logs.ListTags(ctx)
	if err != nil {
		if known := a.logs.Snapshot().Tags; len(known) > 0 && errors.Is(err, client.ErrNetwork) {
			a.track(err)
			a.printf("(cached)\n")
			printTags(a.out, known)
			return nil
		}
		return a.fail(err)
	}
	a.track(nil)
	printTags(a.out, tags)
	return nil
}
