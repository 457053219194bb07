package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/listenupapp/tagengine/internal/domain"
	"github.com/listenupapp/tagengine/internal/normalize"
	"github.com/listenupapp/tagengine/internal/search"
	"github.com/listenupapp/tagengine/internal/service"
)

func runList(ctx context.Context, a *app, args []string) error {
	fs := newFlags("list")
	scope := fs.String("scope", "", "tag scope")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := requireScope(fs, *scope); err != nil {
		return err
	}

	tags, err := a.svc.ListTags(ctx, *scope)
	if err != nil {
		return err
	}
	return a.print(tags)
}

func runCreate(ctx context.Context, a *app, args []string) error {
	fs := newFlags("create")
	scope := fs.String("scope", "", "tag scope")
	category := fs.String("category", string(domain.CategoryTopic), "source, topic, or concept")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := requireScope(fs, *scope); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return usagef("create: expected exactly one NAME")
	}

	tag, err := a.svc.CreateTag(ctx, service.CreateTagRequest{
		Scope:    *scope,
		Name:     fs.Arg(0),
		Category: domain.Category(strings.ToLower(*category)),
	})
	if err != nil {
		return err
	}
	return a.print(tag)
}

func runRename(ctx context.Context, a *app, args []string) error {
	fs := newFlags("rename")
	if err := parse(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return usagef("rename: expected ID NEW_NAME")
	}

	res, err := a.svc.RenameTag(ctx, fs.Arg(0), fs.Arg(1))
	if err != nil {
		return err
	}
	return a.print(res)
}

func runRecategorize(ctx context.Context, a *app, args []string) error {
	fs := newFlags("recategorize")
	if err := parse(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return usagef("recategorize: expected ID CATEGORY")
	}

	category, err := domain.ParseCategory(fs.Arg(1))
	if err != nil {
		return usagef("recategorize: %v", err)
	}

	tag, err := a.svc.UpdateCategory(ctx, fs.Arg(0), category)
	if err != nil {
		return err
	}
	return a.print(tag)
}

func runMerge(ctx context.Context, a *app, args []string) error {
	fs := newFlags("merge")
	scope := fs.String("scope", "", "tag scope")
	into := fs.String("into", "", "target tag id")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := requireScope(fs, *scope); err != nil {
		return err
	}
	if *into == "" || fs.NArg() == 0 {
		return usagef("merge: expected -into TARGET and at least one SOURCE")
	}

	res, err := a.svc.MergeTags(ctx, *scope, fs.Args(), *into)
	if err != nil {
		return err
	}
	return a.print(res)
}

func runAutoFormat(ctx context.Context, a *app, args []string) error {
	fs := newFlags("autoformat")
	scope := fs.String("scope", "", "tag scope")
	format := fs.String("format", "title", "formatter (title, collapse)")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := requireScope(fs, *scope); err != nil {
		return err
	}

	formatter, ok := normalize.LookupFormatter(*format)
	if !ok {
		return usagef("autoformat: unknown format %q", *format)
	}

	res, err := a.svc.AutoFormatAll(ctx, *scope, formatter)
	if err != nil {
		return err
	}
	return a.print(res)
}

func runAnalyze(ctx context.Context, a *app, args []string) error {
	fs := newFlags("analyze")
	scope := fs.String("scope", "", "tag scope")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := requireScope(fs, *scope); err != nil {
		return err
	}

	analysis, err := a.svc.AnalyzeConsolidation(ctx, *scope)
	if err != nil {
		return err
	}
	return a.print(analysis)
}

// runApply reads merge groups as written by analyze: either the whole
// analysis object or a bare array of groups.
func runApply(ctx context.Context, a *app, args []string) error {
	fs := newFlags("apply")
	scope := fs.String("scope", "", "tag scope")
	file := fs.String("file", "-", "groups JSON file, - for stdin")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := requireScope(fs, *scope); err != nil {
		return err
	}

	var r io.Reader = a.stdin
	if *file != "-" {
		f, err := os.Open(*file)
		if err != nil {
			return fmt.Errorf("open groups file: %w", err)
		}
		defer f.Close()
		r = f
	}

	groups, err := readGroups(r)
	if err != nil {
		return err
	}

	return a.print(a.svc.ApplyConsolidation(ctx, *scope, groups))
}

func readGroups(r io.Reader) ([]domain.MergeGroup, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read groups: %w", err)
	}

	var groups []domain.MergeGroup
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		err = json.Unmarshal(data, &groups)
	} else {
		var envelope struct {
			Groups []domain.MergeGroup `json:"groups"`
		}
		err = json.Unmarshal(data, &envelope)
		groups = envelope.Groups
	}
	if err != nil {
		return nil, usagef("apply: invalid groups JSON: %v", err)
	}
	return groups, nil
}

func runSimilar(ctx context.Context, a *app, args []string) error {
	fs := newFlags("similar")
	scope := fs.String("scope", "", "tag scope")
	limit := fs.Int("limit", search.DefaultLimit, "maximum matches")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := requireScope(fs, *scope); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return usagef("similar: expected exactly one NAME")
	}

	matches, err := a.svc.SimilarTags(ctx, *scope, fs.Arg(0), *limit)
	if err != nil {
		return err
	}
	return a.print(matches)
}

func runDelete(ctx context.Context, a *app, args []string) error {
	fs := newFlags("delete")
	if err := parse(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return usagef("delete: expected exactly one ID")
	}

	if err := a.svc.DeleteTag(ctx, fs.Arg(0)); err != nil {
		return err
	}
	return a.print(map[string]string{"deleted": fs.Arg(0)})
}

func runTagContent(ctx context.Context, a *app, args []string) error {
	fs := newFlags("tag-content")
	scope := fs.String("scope", "", "tag scope")
	content := fs.String("content", "", "content item id")
	category := fs.String("category", string(domain.CategoryTopic), "category for new tags")
	primary := fs.String("primary", "", "comma separated primary tag names")
	secondary := fs.String("secondary", "", "comma separated secondary tag names")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := requireScope(fs, *scope); err != nil {
		return err
	}

	tags, err := a.svc.TagContent(ctx, *scope, *content,
		splitList(*primary), splitList(*secondary),
		domain.Category(strings.ToLower(*category)))
	if err != nil {
		return err
	}
	return a.print(tags)
}

func runDedupeLists(_ context.Context, a *app, args []string) error {
	fs := newFlags("dedupe-lists")
	primary := fs.String("primary", "", "comma separated primary tag names")
	secondary := fs.String("secondary", "", "comma separated secondary tag names")
	if err := parse(fs, args); err != nil {
		return err
	}

	p, s := splitList(*primary), splitList(*secondary)
	return a.print(struct {
		Merged       []string `json:"merged"`
		HasDuplicate bool     `json:"has_duplicate"`
	}{
		Merged:       normalize.MergeTagLists(p, s),
		HasDuplicate: normalize.HasDuplicate(p, s),
	})
}
