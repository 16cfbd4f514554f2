// Package github implements the issue-tracker source handler. It crawls the
// issues and issue comments of a repository; every issue and every comment
// becomes its own source, addressed by its API URL.
package github

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/semindex-cli/internal/connectors"
	"github.com/custodia-labs/semindex-cli/internal/core/domain"
	"github.com/custodia-labs/semindex-cli/internal/core/ports/driven"
)

// Ensure Handler implements the port.
var _ driven.SourceHandler = (*Handler)(nil)

// HandlerName is the registered name of the issue-tracker handler.
const HandlerName = "github"

// Source types declared by the handler.
const (
	SourceTypeIssue   = "Issue"
	SourceTypeComment = "Comment"
)

const (
	// defaultTimeout bounds every API request.
	defaultTimeout = 30 * time.Second

	// proactiveRate throttles to ~1.2 requests/second, well under the
	// authenticated 5000/hour limit.
	proactiveRate = 1.2

	// pageSize is the issues/comments page size.
	pageSize = 100
)

// Handler crawls GitHub issues and comments of one repository root
// ("owner/repo").
type Handler struct {
	connectors.Bound
	client  *gh.Client
	limiter *rate.Limiter
	tags    driven.TagRepository
}

// New creates a GitHub handler. An empty token yields an unauthenticated
// client, which works for public repositories at a lower rate limit.
func New(tags driven.TagRepository, token string) *Handler {
	var httpClient *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(context.Background(), ts)
	} else {
		httpClient = &http.Client{}
	}
	httpClient.Timeout = defaultTimeout

	return &Handler{
		client:  gh.NewClient(httpClient),
		limiter: rate.NewLimiter(rate.Limit(proactiveRate), 1),
		tags:    tags,
	}
}

// Name returns the handler name.
func (h *Handler) Name() string { return HandlerName }

// SourceTypes returns the declared source-type names.
func (h *Handler) SourceTypes() []string {
	return []string{SourceTypeIssue, SourceTypeComment}
}

// Crawl pages through all issues of root ("owner/repo"), yielding a draft
// per issue and per issue comment. Pull requests are skipped; they share
// the issues endpoint but are not tracker tickets.
func (h *Handler) Crawl(ctx context.Context, root string) (<-chan domain.Source, <-chan error) {
	drafts := make(chan domain.Source)
	errs := make(chan error)

	go func() {
		defer close(drafts)
		defer close(errs)

		owner, repo, err := splitRepo(root)
		if err != nil {
			sendErr(ctx, errs, err)
			return
		}

		opts := &gh.IssueListByRepoOptions{
			State:       "all",
			Sort:        "updated",
			Direction:   "asc",
			ListOptions: gh.ListOptions{PerPage: pageSize},
		}
		for {
			if err := h.limiter.Wait(ctx); err != nil {
				return
			}
			issues, resp, err := h.client.Issues.ListByRepo(ctx, owner, repo, opts)
			if err != nil {
				sendErr(ctx, errs, fmt.Errorf("list issues %s/%s: %w", owner, repo, err))
				return
			}

			for _, issue := range issues {
				if issue.IsPullRequest() {
					continue
				}
				draft, err := h.issueDraft(ctx, repo, issue)
				if err != nil {
					sendErr(ctx, errs, err)
					continue
				}
				if !send(ctx, drafts, *draft) {
					return
				}
				if issue.GetComments() > 0 {
					if !h.crawlComments(ctx, drafts, errs, owner, repo, issue.GetNumber()) {
						return
					}
				}
			}

			if resp.NextPage == 0 {
				return
			}
			opts.ListOptions.Page = resp.NextPage
		}
	}()

	return drafts, errs
}

// crawlComments yields a draft per comment of one issue. Returns false when
// the crawl should stop.
func (h *Handler) crawlComments(
	ctx context.Context, drafts chan<- domain.Source, errs chan<- error, owner, repo string, number int,
) bool {
	opts := &gh.IssueListCommentsOptions{ListOptions: gh.ListOptions{PerPage: pageSize}}
	for {
		if err := h.limiter.Wait(ctx); err != nil {
			return false
		}
		comments, resp, err := h.client.Issues.ListComments(ctx, owner, repo, number, opts)
		if err != nil {
			sendErr(ctx, errs, fmt.Errorf("list comments %s/%s#%d: %w", owner, repo, number, err))
			return true
		}
		for _, comment := range comments {
			draft, err := h.commentDraft(ctx, repo, number, comment)
			if err != nil {
				sendErr(ctx, errs, err)
				continue
			}
			if !send(ctx, drafts, *draft) {
				return false
			}
		}
		if resp.NextPage == 0 {
			return true
		}
		opts.Page = resp.NextPage
	}
}

// IndexOne refetches a single issue or comment by its API URL and builds a
// fresh draft for it.
func (h *Handler) IndexOne(ctx context.Context, uri string) (*domain.Source, error) {
	_, repo, err := repoFromURI(uri)
	if err != nil {
		return nil, err
	}

	switch kindOf(uri) {
	case SourceTypeComment:
		comment := new(gh.IssueComment)
		if err := h.fetch(ctx, uri, comment); err != nil {
			return nil, err
		}
		return h.commentDraft(ctx, repo, 0, comment)
	case SourceTypeIssue:
		issue := new(gh.Issue)
		if err := h.fetch(ctx, uri, issue); err != nil {
			return nil, err
		}
		return h.issueDraft(ctx, repo, issue)
	default:
		return nil, fmt.Errorf("cannot identify source type from uri: %s", uri)
	}
}

// Read refetches the live body text of an issue or comment source.
func (h *Handler) Read(ctx context.Context, source *domain.Source) (string, error) {
	switch kindOf(source.URI) {
	case SourceTypeComment:
		comment := new(gh.IssueComment)
		if err := h.fetch(ctx, source.URI, comment); err != nil {
			return "", err
		}
		return fmt.Sprintf("%s: %s", comment.GetUser().GetLogin(), comment.GetBody()), nil
	case SourceTypeIssue:
		issue := new(gh.Issue)
		if err := h.fetch(ctx, source.URI, issue); err != nil {
			return "", err
		}
		return fmt.Sprintf("%s\n%s", issue.GetTitle(), issue.GetBody()), nil
	default:
		return "", fmt.Errorf("cannot identify source type from uri: %s", source.URI)
	}
}

// fetch performs a rate-limited GET of an absolute API URL.
func (h *Handler) fetch(ctx context.Context, uri string, into any) error {
	if err := h.limiter.Wait(ctx); err != nil {
		return err
	}
	req, err := h.client.NewRequest(http.MethodGet, uri, nil)
	if err != nil {
		return fmt.Errorf("request %s: %w", uri, err)
	}
	if _, err := h.client.Do(ctx, req, into); err != nil {
		return fmt.Errorf("fetch %s: %w", uri, err)
	}
	return nil
}

// issueDraft builds a draft source for an issue. Issue labels become tags.
func (h *Handler) issueDraft(ctx context.Context, repo string, issue *gh.Issue) (*domain.Source, error) {
	created := issue.GetCreatedAt().Time
	modified := issue.GetUpdatedAt().Time
	if modified.Before(created) {
		modified = created
	}

	tags, err := h.draftTags(ctx, labelNames(issue.Labels)...)
	if err != nil {
		return nil, err
	}
	return &domain.Source{
		SourceHandlerID: h.Binding().HandlerID,
		SourceTypeID:    h.TypeID(SourceTypeIssue),
		URI:             issue.GetURL(),
		ResolvedTo:      issue.GetHTMLURL(),
		Title:           fmt.Sprintf("%s#%d: %s", repo, issue.GetNumber(), issue.GetTitle()),
		ObjCreated:      created,
		ObjModified:     modified,
		LastChecked:     time.Now(),
		Tags:            tags,
	}, nil
}

// commentDraft builds a draft source for an issue comment. The issue number
// may be 0 when the comment was fetched directly by URL.
func (h *Handler) commentDraft(ctx context.Context, repo string, number int, comment *gh.IssueComment) (*domain.Source, error) {
	created := comment.GetCreatedAt().Time
	modified := comment.GetUpdatedAt().Time
	if modified.Before(created) {
		modified = created
	}

	title := fmt.Sprintf("%s: comment by %s", repo, comment.GetUser().GetLogin())
	if number > 0 {
		title = fmt.Sprintf("%s#%d: comment by %s", repo, number, comment.GetUser().GetLogin())
	}

	tags, err := h.draftTags(ctx)
	if err != nil {
		return nil, err
	}
	return &domain.Source{
		SourceHandlerID: h.Binding().HandlerID,
		SourceTypeID:    h.TypeID(SourceTypeComment),
		URI:             comment.GetURL(),
		ResolvedTo:      comment.GetHTMLURL(),
		Title:           title,
		ObjCreated:      created,
		ObjModified:     modified,
		LastChecked:     time.Now(),
		Tags:            tags,
	}, nil
}

// draftTags returns the handler tag plus one tag per extra name,
// created on demand.
func (h *Handler) draftTags(ctx context.Context, extra ...string) ([]domain.Tag, error) {
	tags := make([]domain.Tag, 0, len(extra)+1)
	handlerTag, err := h.tags.GetOrCreate(ctx, HandlerName)
	if err != nil {
		return nil, fmt.Errorf("tag %q: %w", HandlerName, err)
	}
	tags = append(tags, *handlerTag)
	for _, name := range extra {
		tag, err := h.tags.GetOrCreate(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("tag %q: %w", name, err)
		}
		tags = append(tags, *tag)
	}
	return tags, nil
}

// kindOf maps an API URL to the declared source type it addresses.
// Comments must be checked first: their URLs also contain "/issues/".
func kindOf(uri string) string {
	switch {
	case strings.Contains(uri, "/issues/comments/"):
		return SourceTypeComment
	case strings.Contains(uri, "/issues/"):
		return SourceTypeIssue
	default:
		return ""
	}
}

// splitRepo parses an "owner/repo" crawl root.
func splitRepo(root string) (owner, repo string, err error) {
	parts := strings.Split(strings.Trim(root, "/"), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("crawl root %q must be owner/repo", root)
	}
	return parts[0], parts[1], nil
}

// repoFromURI extracts owner and repo from an API URL like
// https://api.github.com/repos/OWNER/REPO/issues/1.
func repoFromURI(uri string) (owner, repo string, err error) {
	const marker = "/repos/"
	idx := strings.Index(uri, marker)
	if idx < 0 {
		return "", "", fmt.Errorf("uri %q is not a repository resource", uri)
	}
	parts := strings.Split(uri[idx+len(marker):], "/")
	if len(parts) < 2 {
		return "", "", fmt.Errorf("uri %q is not a repository resource", uri)
	}
	return parts[0], parts[1], nil
}

func labelNames(labels []*gh.Label) []string {
	names := make([]string, len(labels))
	for i, l := range labels {
		names[i] = l.GetName()
	}
	return names
}

func send(ctx context.Context, drafts chan<- domain.Source, draft domain.Source) bool {
	select {
	case drafts <- draft:
		return true
	case <-ctx.Done():
		return false
	}
}

func sendErr(ctx context.Context, errs chan<- error, err error) {
	select {
	case errs <- err:
	case <-ctx.Done():
	}
}
