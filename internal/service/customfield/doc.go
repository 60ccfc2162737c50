// Package customfield manages the admin-defined fields that imports can map
// columns onto. Values for these fields are stored in each enquiry's
// followUpInfo JSON rather than in their own columns.
package customfield
