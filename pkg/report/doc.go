// Package report renders engine runs for people and CI systems.
//
// LogReporter writes one structured log record per decision, using the
// same wording as the workflow's historical output (✅ passed, ❌ required
// failure, ⚠️ failed but continuing, ⏭️ skipped). GitHubReporter emits
// GitHub Actions workflow commands and a job summary. Summary is the
// serializable view of a finished run used by --format json and by the
// run history.
package report
