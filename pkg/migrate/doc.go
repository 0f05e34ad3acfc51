/*
Package migrate renumbers a virtual machine or container on a node.

A migration from OLD to NEW runs these stages in order and never goes back:

	validate       ids are well formed and differ, the node root exists,
	               NEW has no definition, OLD has one, storage.cfg loads
	volumes        rename every volume OLD owns and move OLD.conf to NEW.conf
	backups        rename vzdump-*-OLD-* archives on backup storages
	pool_registry  replace OLD in pool: lines of user.cfg
	job_registry   replace OLD in vmid fields of jobs.cfg
	firewall       move firewall/OLD.fw to NEW.fw
	done

A failure in validate returns a *ValidationError and nothing has changed. An
I/O failure in a later stage returns a *StageError naming the stage; the
stages before it stay applied because volume managers, files and registries
share no commit protocol. Individual objects that cannot be handled (a
backend missing from the catalog, a volume that is not listed, a rename the
tool refused) do not stop the run. They are collected in the Report with
outcome skipped or failed so an operator can finish by hand.

Progress is published on an events.Broker when one is configured. The
journal and the metrics collector subscribe to it.

# Usage

	o := migrate.New(migrate.Options{
		Paths:  paths,
		Runner: volume.NewExecRunner(0),
		Verify: true,
	})
	report, err := o.Migrate(ctx, "100", "200")
*/
package migrate
