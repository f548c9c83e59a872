package taskscheduler

// reportError hands err to a user supplied handler.
//
// Errors come from collaborators around the core (dispatchers, task
// adapters). They never stop a drain loop. If no handler is registered,
// the error is silently ignored.
func reportError(onErr func(error), err error) {
	if onErr != nil && err != nil {
		onErr(err)
	}
}
