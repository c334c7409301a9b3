// Package runner orchestrates a single queue-processing pass: ordering
// pending jobs, claiming one, downloading and combining its source videos,
// uploading the result, and finalizing the queue row. A claimed row always
// reaches a terminal status, even when a processing step fails.
package runner
