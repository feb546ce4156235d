// boardcrawl - Multi-Source Community Post Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardcrawl

package session

// localizedReasons renders error_reason in the locale named by a
// session's language config (§7: "language field... selects the locale
// used to render any localized reasons, but the machine code is
// language-independent"). Unknown locales fall back to English.
var localizedReasons = map[string]map[string]string{
	ErrInvalidURL: {
		"en": "the provided input could not be parsed as a URL or board identifier",
		"ko": "입력값을 URL 또는 게시판 식별자로 해석할 수 없습니다",
	},
	ErrSiteNotFound: {
		"en": "no adapter is registered for the detected site",
		"ko": "감지된 사이트에 등록된 어댑터가 없습니다",
	},
	ErrNoPostsFound: {
		"en": "no posts matched the requested filters",
		"ko": "요청한 필터와 일치하는 게시물이 없습니다",
	},
	ErrConnectionFailed: {
		"en": "could not connect to the source site",
		"ko": "소스 사이트에 연결할 수 없습니다",
	},
	ErrTimeout: {
		"en": "the request timed out",
		"ko": "요청 시간이 초과되었습니다",
	},
	ErrRateLimited: {
		"en": "the source site is rate limiting this request",
		"ko": "소스 사이트에서 요청 속도를 제한하고 있습니다",
	},
	ErrCrawlingError: {
		"en": "an error occurred while collecting posts",
		"ko": "게시물을 수집하는 중 오류가 발생했습니다",
	},
	ErrTranslationFailed: {
		"en": "translation failed; original titles were kept",
		"ko": "번역에 실패하여 원본 제목이 유지되었습니다",
	},
	ErrInvalidParameters: {
		"en": "one or more crawl parameters failed validation",
		"ko": "하나 이상의 크롤링 매개변수가 유효성 검사를 통과하지 못했습니다",
	},
}

// localizedReason returns the locale-rendered reason for code, falling
// back to English, and to the code itself if the catalog has no entry.
func localizedReason(code, lang string) string {
	reasons, ok := localizedReasons[code]
	if !ok {
		return code
	}
	if msg, ok := reasons[lang]; ok {
		return msg
	}
	return reasons["en"]
}
