// Package discovery finds settled markets for a series within a close-time
// range via cursor pagination.
//
// Discovery is deliberately forgiving: a failed page is logged and whatever
// markets were already accumulated are returned, so a long run that dies on
// page 40 still yields 39 pages of data.
package discovery
