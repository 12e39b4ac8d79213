// Package gitrepo runs the git operations needed to maintain a cached clone
// of the manifest repository.
//
// RepositoryManager issues git commands through execshell with the clone path
// as working directory. GoGitRemoteInspector reads remotes through go-git as
// an alternative to git remote get-url. The remote URL helpers parse and
// format owner/name repository addresses.
package gitrepo
