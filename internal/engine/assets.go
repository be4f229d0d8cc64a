// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package engine

import (
	"regexp"
	"strings"
)

var (
	// assetAttrRe matches relative asset references in href/src attributes.
	assetAttrRe = regexp.MustCompile(`(^|\s)(href|src)=(["'])(?:\./)?((?:css|js|images|img|fonts)/)`)
	// assetURLRe matches relative asset references in CSS url(...).
	assetURLRe = regexp.MustCompile(`url\((["']?)(?:\./)?((?:css|js|images|img|fonts)/)`)
	// themeAssetRe matches the legacy [%ntheme_asset%]path[%/ntheme_asset%] pair.
	themeAssetRe = regexp.MustCompile(`\[%\s*ntheme_asset\s*%\](.*?)\[%\s*/ntheme_asset\s*%\]`)
)

// RewriteAssetPaths points relative theme asset references at base, the
// absolute URL theme assets are served from. Paths outside css/, js/,
// images/, img/ and fonts/ are left alone.
func RewriteAssetPaths(html, base string) string {
	base = strings.TrimRight(base, "/")

	html = themeAssetRe.ReplaceAllStringFunc(html, func(m string) string {
		inner := themeAssetRe.FindStringSubmatch(m)[1]
		return base + "/" + strings.TrimLeft(strings.TrimSpace(inner), "/")
	})
	html = assetAttrRe.ReplaceAllStringFunc(html, func(m string) string {
		sm := assetAttrRe.FindStringSubmatch(m)
		return sm[1] + sm[2] + "=" + sm[3] + base + "/" + sm[4]
	})
	html = assetURLRe.ReplaceAllStringFunc(html, func(m string) string {
		sm := assetURLRe.FindStringSubmatch(m)
		return "url(" + sm[1] + base + "/" + sm[2]
	})
	return html
}
