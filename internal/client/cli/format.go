package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/policylogs/internal/client/models"
)

const dateLayout = "2006-01-02 15:04"

func printLogLine(w io.Writer, r models.LogRecord) {
	fmt.Fprintf(w, "#%-4d [%s] %s by %s (%d comments)\n",
		r.ID, r.Status.Title(), r.Title, r.AuthorName, r.CommentCount)
}

func printLogList(w io.Writer, logs []models.LogRecord) {
	if len(logs) == 0 {
		fmt.Fprintln(w, "No logs")
		return
	}
	for _, r := range logs {
		printLogLine(w, r)
	}
}

func printLogDetail(w io.Writer, r models.LogRecord) {
	fmt.Fprintf(w, "#%d %s\n", r.ID, r.Title)
	fmt.Fprintf(w, "status:  %s\n", r.Status.Title())
	fmt.Fprintf(w, "author:  %s\n", r.AuthorName)
	fmt.Fprintf(w, "created: %s\n", r.CreatedAt.Local().Format(dateLayout))
	fmt.Fprintf(w, "updated: %s\n", r.UpdatedAt.Local().Format(dateLayout))
	if len(r.Tags) > 0 {
		fmt.Fprintf(w, "tags:    %s\n", tagNames(r.Tags))
	}
	if r.Document != nil && *r.Document != "" {
		fmt.Fprintf(w, "document: %s\n", *r.Document)
	}
	fmt.Fprintf(w, "\n%s\n", r.Description)

	if len(r.Comments) > 0 {
		fmt.Fprintf(w, "\nComments (%d):\n", len(r.Comments))
		for _, c := range r.Comments {
			printComment(w, c)
		}
	}
}

func printComment(w io.Writer, c models.Comment) {
	fmt.Fprintf(w, "  %s, %s: %s\n", c.AuthorName, c.CreatedAt.Local().Format(dateLayout), c.Content)
}

func printTags(w io.Writer, tags []models.Tag) {
	if len(tags) == 0 {
		fmt.Fprintln(w, "No tags")
		return
	}
	for _, t := range tags {
		fmt.Fprintf(w, "%-4d %s %s\n", t.ID, t.Color, t.Name)
	}
}

func tagNames(tags []models.Tag) string {
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, t.Name)
	}
	return strings.Join(names, ", ")
}
