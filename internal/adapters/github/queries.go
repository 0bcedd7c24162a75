package github

import (
	"fmt"
	"strings"
	"time"
)

const userStatsQuery = `
query userInfo($login: String!, $includeMergedPullRequests: Boolean!, $startTime: DateTime) {
    user(login: $login) {
        name
        login
        commits: contributionsCollection(from: $startTime) {
            totalCommitContributions
        }
        reviews: contributionsCollection {
            totalPullRequestReviewContributions
        }
        repositoriesContributedTo(first: 1, contributionTypes: [COMMIT, ISSUE, PULL_REQUEST, REPOSITORY]) {
            totalCount
        }
        pullRequests(first: 1) {
            totalCount
        }
        mergedPullRequests: pullRequests(states: MERGED) @include(if: $includeMergedPullRequests) {
            totalCount
        }
        openIssues: issues(states: OPEN) {
            totalCount
        }
        closedIssues: issues(states: CLOSED) {
            totalCount
        }
        followers {
            totalCount
        }
        repositories(first: 100, ownerAffiliations: OWNER, orderBy: {direction: DESC, field: STARGAZERS}) {
            totalCount
            nodes {
                name
                stargazers {
                    totalCount
                }
            }
        }
    }
}`

// creationDateQuery is the lightweight lookup used to narrow the year
// range before the batched contribution fetch.
const creationDateQuery = `
query userCreation($login: String!) {
    user(login: $login) {
        createdAt
    }
}`

const topLanguagesQuery = `
query topLanguages($login: String!) {
    user(login: $login) {
        repositories(ownerAffiliations: OWNER, isFork: false, first: 100) {
            nodes {
                name
                languages(first: 20, orderBy: {field: SIZE, direction: DESC}) {
                    edges {
                        size
                        node {
                            name
                            color
                        }
                    }
                }
            }
        }
    }
}`

// batchedContributionsQuery builds a single query that fetches several
// years of contribution calendars at once, addressed by per-year aliases
// (y2016, y2017, ...). Batching years into one round trip is what keeps
// long-history streak requests fast.
func batchedContributionsQuery(ranges []YearRange) string {
	var b strings.Builder
	b.WriteString("query contributionYears($login: String!) { user(login: $login) {")
	for _, r := range ranges {
		fmt.Fprintf(&b,
			" y%d: contributionsCollection(from: %q, to: %q) { contributionCalendar { totalContributions weeks { contributionDays { contributionCount date } } } }",
			r.Year, r.From.Format(time.RFC3339), r.To.Format(time.RFC3339))
	}
	b.WriteString(" } }")
	return b.String()
}
