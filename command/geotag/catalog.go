package main

import (
    "fmt"
    "path"
    "sort"
    "strings"

    "github.com/dsoprea/go-logging"
    "github.com/dsoprea/go-static-site-builder"
    "github.com/dsoprea/go-static-site-builder/markdown"

    "github.com/mklein-de/geotagger-mt"
)

const (
    catalogDefaultName = "Tagged Image Catalog"

    catalogImageWidth  = 600
    catalogImageHeight = 0

    catalogUnresolvedPlaceName = "No Resolved Place"
)

// writeTaggedCatalog writes an HTML catalog of the tagged images, one page
// per resolved place.
func writeTaggedCatalog(items []*geotag.WorkItem, catalogPath string) (err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    sc := sitebuilder.NewSiteContext(catalogPath)
    md := markdowndialect.NewMarkdownDialect()

    sb := sitebuilder.NewSiteBuilder(catalogDefaultName, md, sc)

    rootNode := sb.Root()

    // Bin the images by place, preserving arrival order within each bin.

    binned := make(map[string][]*geotag.WorkItem)
    for _, item := range items {
        place := placePhrase(item)
        if place == "" {
            place = catalogUnresolvedPlaceName
        }

        binned[place] = append(binned[place], item)
    }

    places := make([]string, 0, len(binned))
    for place := range binned {
        places = append(places, place)
    }

    sort.Strings(places)

    catalogLinks := make([]sitebuilder.LinkWidget, 0, len(places))
    for _, place := range places {
        placeItems := binned[place]

        childPageId := catalogPageId(place)
        childNode, err := rootNode.AddChildNode(childPageId, place)
        log.PanicIf(err)

        childPb := childNode.Builder()

        for _, item := range placeItems {
            lrl := sitebuilder.NewLocalResourceLocator(item.Filepath)

            filename := path.Base(item.Filepath)

            iw := sitebuilder.NewImageWidget(filename, lrl, catalogImageWidth, catalogImageHeight)

            err := childPb.AddContentImage(iw)
            log.PanicIf(err)
        }

        navbarTitle := fmt.Sprintf("%s (%d)", place, len(placeItems))

        lw := sitebuilder.NewLinkWidget(navbarTitle, sitebuilder.NewSitePageLocalResourceLocator(sb, childPageId))
        catalogLinks = append(catalogLinks, lw)
    }

    rootPb := rootNode.Builder()

    nw := sitebuilder.NewNavbarWidget(catalogLinks)

    err = rootPb.AddVerticalNavbar(nw, "Places")
    log.PanicIf(err)

    err = sb.WriteToPath()
    log.PanicIf(err)

    return nil
}

// catalogPageId reduces a place phrase to a filename-safe page identity.
func catalogPageId(place string) string {
    mapped := strings.Map(func(r rune) rune {
        if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
            return r
        }

        return '-'
    }, place)

    return strings.ToLower(mapped)
}
