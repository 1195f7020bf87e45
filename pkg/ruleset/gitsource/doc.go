// Package gitsource keeps rule declarations in a Git repository.
//
// A Repository clones the configured branch into a local directory and
// pulls new commits on demand. The declaration directory inside the clone
// is handed to the regular ruleset loader, so remote rule sets behave
// exactly like a local rules directory.
//
// A Poller pulls the repository periodically and calls a reload function
// whenever a commit touches a declaration file. When the reload fails the
// clone is checked out at the last commit that loaded cleanly and reloaded
// from there, so a broken push never replaces a working rule set.
//
//	repo, err := gitsource.NewRepository(&cfg.Rules.Git)
//	if err != nil {
//	    return err
//	}
//	if err := repo.Clone(ctx); err != nil {
//	    return err
//	}
//	poller := gitsource.NewPoller(repo, cfg.Rules.Git.PollInterval, reload)
//	if err := poller.Start(ctx); err != nil {
//	    return err
//	}
//	defer poller.Stop()
//
// Authentication supports HTTPS tokens, SSH keys and anonymous access.
package gitsource
