package constant

// TopicSyncJobs is the in-process queue topic for async sync runs.
const TopicSyncJobs = "sync_jobs"
