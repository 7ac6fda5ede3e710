// Package projects manages the projects of a workspace. Deleting a project
// deletes its tasks in the same transaction.
package projects
