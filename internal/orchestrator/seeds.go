package orchestrator

// commonFiles is the fixed list of well-known paths fetched once no
// directory listing is available -- verbatim the set that wouldn't reveal
// anything more interesting than a loose object's text, no HTML or globs.
var commonFiles = []string{
	".gitignore",
	".git/COMMIT_EDITMSG",
	".git/description",
	".git/hooks/applypatch-msg.sample",
	".git/hooks/commit-msg.sample",
	".git/hooks/post-commit.sample",
	".git/hooks/post-receive.sample",
	".git/hooks/post-update.sample",
	".git/hooks/pre-applypatch.sample",
	".git/hooks/pre-commit.sample",
	".git/hooks/pre-push.sample",
	".git/hooks/pre-rebase.sample",
	".git/hooks/pre-receive.sample",
	".git/hooks/prepare-commit-msg.sample",
	".git/hooks/update.sample",
	".git/index",
	".git/info/exclude",
	".git/objects/info/packs",
}

// refSeeds is the fixed seed list of plausible ref/log paths tried when no
// directory listing exposes the real set. "refs/heads/master" and
// "logs/refs/heads/master" are two distinct seeds, never concatenated (see
// the design note on the legacy seed-list comma bug).
var refSeeds = []string{
	".git/FETCH_HEAD",
	".git/HEAD",
	".git/ORIG_HEAD",
	".git/config",
	".git/info/refs",
	".git/logs/HEAD",
	".git/logs/refs/heads/master",
	".git/logs/refs/remotes/origin/HEAD",
	".git/logs/refs/remotes/origin/master",
	".git/logs/refs/stash",
	".git/packed-refs",
	".git/refs/heads/master",
	".git/refs/remotes/origin/HEAD",
	".git/refs/remotes/origin/master",
	".git/refs/stash",
	".git/refs/wip/wtree/refs/heads/master",
	".git/refs/wip/index/refs/heads/master",
}

// objectSourceFiles are the text files scanned by the bare-hash scanner to
// seed object discovery, beyond refs/ and logs/ (which are walked by
// whatever ref/log paths ref discovery actually wrote).
var objectSourceFiles = []string{
	".git/packed-refs",
	".git/info/refs",
	".git/FETCH_HEAD",
	".git/ORIG_HEAD",
}
