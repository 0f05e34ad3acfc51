/*
Package registry rewrites unit ids in the node's line-oriented registries.

Two variants share one bounded substitution strategy (package subst):

	Pool registry (user.cfg):
	  pool:web:Web servers:100,101,102::
	  lines starting with "pool:"; ids delimited by ',' or ':' on both sides

	Job registry (jobs.cfg):
	  vzdump: backup-1a2b
	  	vmid 100,101,102
	  lines whose first field is "vmid"; ids preceded by ',' or ' ' and
	  followed by ',' or the end of the line

Only lines selected by the variant are touched, and only whole ids
between the variant's separators are replaced, so migrating 10 never
rewrites 100. Registries are read, rewritten and written back in place
without locking.
*/
package registry
