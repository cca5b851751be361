// StreamBridge - Emby to Stremio bridge
// Copyright 2026 StreamBridge contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streambridge/streambridge

/*
library.go - library views to addon catalogs

Maps Emby library views into catalog definitions and expands library
listings into catalog metas. Folders are descended breadth-first with a
visited set, since Emby folder graphs can contain cycles and shared
children.
*/

package emby

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/streambridge/streambridge/internal/cache"
	"github.com/streambridge/streambridge/internal/logging"
	"github.com/streambridge/streambridge/internal/metrics"
	"github.com/streambridge/streambridge/internal/models"
)

// CatalogDefinition is one addon catalog derived from a library view.
type CatalogDefinition struct {
	LibraryID string
	Type      string
	Name      string
}

// CatalogOptions carries the catalog query extras.
type CatalogOptions struct {
	Skip   int
	Limit  int // 0 means the configured default page size
	Search string
	Sort   string
}

const catalogListFields = "ProviderIds,Name,OriginalTitle,Overview,ProductionYear,ImageTags,BackdropImageTags,PremiereDate,Path"

// movieItemTypes and seriesItemTypes are the leaf types emitted per
// catalog type. Series-catalog queries additionally request container
// types, since the server-side IncludeItemTypes filter would otherwise
// strip the folders the traversal needs to descend into.
var (
	movieItemTypes   = []string{models.ItemTypeMovie, models.ItemTypeVideo}
	seriesItemTypes  = []string{models.ItemTypeSeries}
	seriesQueryTypes = []string{models.ItemTypeSeries, models.ItemTypeFolder, models.ItemTypeBoxSet}
)

// GetLibraryDefinitions maps the user's library views to catalog
// definitions. Returns an empty slice on failure.
func (c *Client) GetLibraryDefinitions(ctx context.Context, uc models.UserConfig) []CatalogDefinition {
	var cacheKey string
	if c.views != nil {
		cacheKey = cache.Key("views", uc.ServerURL, uc.UserID)
		if cached, ok := c.views.Get(cacheKey); ok {
			return cached.([]CatalogDefinition)
		}
	}

	var resp models.EmbyViewsResponse
	if err := c.get(ctx, uc, "/Users/"+uc.UserID+"/Views", "/Users/{id}/Views", url.Values{}, &resp); err != nil {
		logging.Warn().Err(err).Msg("Library views fetch failed")
		return nil
	}

	var defs []CatalogDefinition
	for _, view := range resp.Items {
		for _, catalogType := range inferCatalogTypes(view) {
			defs = append(defs, CatalogDefinition{
				LibraryID: view.ID,
				Type:      catalogType,
				Name:      view.Name,
			})
		}
	}
	if c.views != nil {
		c.views.Set(cacheKey, defs)
	}
	return defs
}

// inferCatalogTypes decides which addon catalog types a view produces:
// the collection-type tag when present, else keyword heuristics over the
// view's type and name. Generic or mixed views produce both types.
func inferCatalogTypes(view models.EmbyView) []string {
	switch strings.ToLower(view.CollectionType) {
	case "movies", "homevideos", "boxsets", "musicvideos":
		return []string{"movie"}
	case "tvshows":
		return []string{"series"}
	case "music", "books", "photos", "playlists", "games", "livetv":
		return nil
	}

	hint := strings.ToLower(view.Type + " " + view.Name)
	switch {
	case strings.Contains(hint, "movie") || strings.Contains(hint, "film"):
		return []string{"movie"}
	case strings.Contains(hint, "series") || strings.Contains(hint, "show") || strings.Contains(hint, "tv") || strings.Contains(hint, "anime"):
		return []string{"series"}
	default:
		return []string{"movie", "series"}
	}
}

// ParseLibraryCatalogID splits a catalog id into the library id and its
// mode suffix. The favorites mode was deliberately retired; it maps to
// "all" instead of filtering by favorite flag.
func ParseLibraryCatalogID(raw string) (libraryID, mode string) {
	libraryID, mode, found := strings.Cut(raw, "::")
	if !found || mode == "" || mode == "favorites" {
		return libraryID, "all"
	}
	return libraryID, mode
}

// GetLibraryMetas lists a library catalog as addon metas: paging, search
// and sort, folder expansion and title derivation. Returns an empty slice
// on failure.
func (c *Client) GetLibraryMetas(ctx context.Context, uc models.UserConfig, catalogID, stremioType string, opts CatalogOptions) []models.Meta {
	libraryID, mode := ParseLibraryCatalogID(catalogID)

	limit := opts.Limit
	if limit <= 0 {
		limit = c.cfg.Emby.CatalogPageSize
	}

	params := url.Values{}
	params.Set("ParentId", libraryID)
	params.Set("IncludeItemTypes", strings.Join(queryTypesFor(stremioType), ","))
	params.Set("Fields", catalogListFields)
	params.Set("ImageTypeLimit", "2")
	params.Set("EnableImageTypes", "Primary,Backdrop")
	params.Set("Recursive", "true")
	params.Set("UserId", uc.UserID)
	params.Set("Limit", strconv.Itoa(limit))

	if opts.Skip > 0 {
		params.Set("StartIndex", strconv.Itoa(opts.Skip))
	}
	if search := strings.TrimSpace(opts.Search); search != "" {
		params.Set("SearchTerm", search)
	}

	sortStrategy := opts.Sort
	if sortStrategy == "" && mode == "lastAdded" {
		sortStrategy = "lastAdded"
	}
	switch {
	case sortStrategy == "lastAdded":
		params.Set("SortBy", "DateCreated")
		params.Set("SortOrder", "Descending")
	case params.Get("SearchTerm") == "" || sortStrategy == "name":
		params.Set("SortBy", "SortName")
		params.Set("SortOrder", "Ascending")
	}

	var resp models.EmbyItemsResponse
	if err := c.get(ctx, uc, "/Users/"+uc.UserID+"/Items", "/Users/{id}/Items", params, &resp); err != nil {
		logging.Warn().Str("library", libraryID).Err(err).Msg("Catalog listing failed")
		return nil
	}
	if len(resp.Items) == 0 {
		return nil
	}

	expanded := c.expandFolders(ctx, uc, resp.Items, stremioType)
	if len(expanded) == 0 {
		return nil
	}

	metas := make([]models.Meta, 0, len(expanded))
	for i := range expanded {
		metas = append(metas, c.mapItemToMeta(expanded[i], stremioType, uc))
	}
	metrics.RecordCatalogResponse(stremioType, len(metas))
	return metas
}

// expandFolders walks an item queue breadth-first, descending into folders
// (series catalogs only, where libraries are commonly nested by network or
// franchise) and emitting leaf items of the target type. Visited and seen
// sets guarantee termination on cyclic folder graphs and deduplicate
// shared children. A folder with no matching children is emitted itself as
// a best-effort fallback entry.
func (c *Client) expandFolders(ctx context.Context, uc models.UserConfig, initial []models.EmbyItem, stremioType string) []models.EmbyItem {
	allowed := make(map[string]bool)
	for _, t := range itemTypesFor(stremioType) {
		allowed[t] = true
	}

	visitedFolders := make(map[string]bool)
	seenItems := make(map[string]bool)
	var expanded []models.EmbyItem

	queue := make([]models.EmbyItem, len(initial))
	copy(queue, initial)

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if stremioType == "series" && isContainerType(current.Type) {
			if visitedFolders[current.ID] {
				continue
			}
			visitedFolders[current.ID] = true

			children := c.folderChildren(ctx, uc, current.ID, stremioType)
			hasAllowedChild := false
			for i := range children {
				child := children[i]
				if isContainerType(child.Type) {
					if !visitedFolders[child.ID] {
						queue = append(queue, child)
					}
					continue
				}
				if !seenItems[child.ID] {
					queue = append(queue, child)
				}
				if allowed[child.Type] {
					hasAllowedChild = true
				}
			}

			if !hasAllowedChild && !seenItems[current.ID] {
				expanded = append(expanded, current)
				seenItems[current.ID] = true
			}
			continue
		}

		if allowed[current.Type] && !seenItems[current.ID] {
			expanded = append(expanded, current)
			seenItems[current.ID] = true
		}
	}

	return expanded
}

// folderChildren lists a folder's direct children, throttled so traversal
// of deep trees cannot hammer the server.
func (c *Client) folderChildren(ctx context.Context, uc models.UserConfig, folderID, stremioType string) []models.EmbyItem {
	if c.expandLimiter != nil {
		if err := c.expandLimiter.Wait(ctx); err != nil {
			return nil
		}
	}
	metrics.FolderExpansions.Inc()

	params := url.Values{}
	params.Set("ParentId", folderID)
	params.Set("IncludeItemTypes", strings.Join(queryTypesFor(stremioType), ","))
	params.Set("Fields", catalogListFields)
	params.Set("ImageTypeLimit", "2")
	params.Set("EnableImageTypes", "Primary,Backdrop")
	params.Set("Recursive", "false")
	params.Set("UserId", uc.UserID)
	params.Set("Limit", strconv.Itoa(c.cfg.Emby.CatalogPageSize))

	var resp models.EmbyItemsResponse
	if err := c.get(ctx, uc, "/Users/"+uc.UserID+"/Items", "/Users/{id}/Items", params, &resp); err != nil {
		logging.Warn().Str("folder", folderID).Err(err).Msg("Folder expansion fetch failed")
		return nil
	}
	return resp.Items
}

func itemTypesFor(stremioType string) []string {
	if stremioType == "series" {
		return seriesItemTypes
	}
	return movieItemTypes
}

// queryTypesFor is the server-side IncludeItemTypes filter; series
// catalogs keep container types in the response so the traversal can
// reach nested shows.
func queryTypesFor(stremioType string) []string {
	if stremioType == "series" {
		return seriesQueryTypes
	}
	return movieItemTypes
}

func isContainerType(itemType string) bool {
	return itemType == models.ItemTypeFolder || itemType == models.ItemTypeBoxSet
}
