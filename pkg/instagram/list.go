package instagram

import (
	"fmt"

	"github.com/go-rod/rod"

	errs "instagrampa/pkg/errors"
)

// DialogList is a followers or following dialog open on a profile page. It
// exposes the scroll-and-read primitives the sampler drives: extend the list,
// read the usernames currently rendered, and check whether more content is
// still arriving.
type DialogList struct {
	page *rod.Page
}

// Ready reports whether the dialog has rendered at least one row.
func (l *DialogList) Ready() bool {
	res, err := l.page.Eval(`() => !!document.querySelector("div[role='dialog'] div[aria-labelledby]")`)
	if err != nil {
		return false
	}
	return res.Value.Bool()
}

// Extend scrolls the dialog to the bottom so Instagram loads the next batch
// of rows. Rows above the fold get recycled out of the DOM, which is why
// callers must read Visible between extends.
func (l *DialogList) Extend() error {
	res, err := l.page.Eval(`() => {
		const row = document.querySelector("div[role='dialog'] div[aria-labelledby]");
		if (!row) return false;
		const scrollable = row.parentNode.parentNode.parentNode;
		scrollable.scrollTop = scrollable.scrollHeight;
		return true;
	}`)
	if err != nil {
		return errs.New(errs.ErrorTypeNavigation, fmt.Sprintf("failed to scroll dialog: %v", err))
	}
	if !res.Value.Bool() {
		return errs.New(errs.ErrorTypeNavigation, "dialog disappeared while scrolling")
	}
	return nil
}

// Visible returns the usernames currently rendered in the dialog, in display
// order, without duplicates.
func (l *DialogList) Visible() ([]string, error) {
	res, err := l.page.Eval(`() => {
		const rows = document.querySelectorAll("div[role='dialog'] div[aria-labelledby]");
		const users = [];
		for (const row of rows) {
			const link = row.querySelector("a[href]");
			if (!link) continue;
			const username = link.getAttribute("href").replaceAll("/", "");
			if (username && !users.includes(username)) users.push(username);
		}
		return users;
	}`)
	if err != nil {
		return nil, errs.New(errs.ErrorTypeNavigation, fmt.Sprintf("failed to read dialog rows: %v", err))
	}
	var users []string
	for _, v := range res.Value.Arr() {
		users = append(users, v.Str())
	}
	return users, nil
}

// Loading reports whether the dialog is still fetching more rows.
func (l *DialogList) Loading() bool {
	res, err := l.page.Eval(`() => !!document.querySelector("div[role='dialog'] svg[aria-label='Loading...']")`)
	if err != nil {
		return false
	}
	return res.Value.Bool()
}
