// Package tasks manages the tasks of a workspace's projects.
//
// Assignees must be members of the workspace (ASSIGNEE_NOT_MEMBER
// otherwise). Updates are diffed against the stored task: a changed
// assignee publishes TaskUnassigned and TaskAssigned, a changed status
// publishes TaskStatusChanged.
package tasks
