package sqlinline

const QEnsureJournalSchema = `--sql e7dcfb40-a69c-4180-9295-7e7e34ec26f7
create table if not exists runs(
  id uuid primary key,
  instruction text not null default '',
  subject_type text not null default '',
  prompt text not null,
  gen_model text not null,
  gen_size text not null,
  candidates_received int not null,
  candidates_stored int not null,
  started_at timestamptz not null,
  finished_at timestamptz not null
);
create table if not exists run_assets(
  run_id uuid not null references runs(id) on delete cascade,
  position int not null,
  url text not null,
  primary key (run_id, position)
);
`

const QInsertRun = `--sql 42e893fa-39de-4611-868e-efc6edfb9229
insert into runs(
  id,
  instruction,
  subject_type,
  prompt,
  gen_model,
  gen_size,
  candidates_received,
  candidates_stored,
  started_at,
  finished_at
) values (
  $1::uuid,
  $2::text,
  $3::text,
  $4::text,
  $5::text,
  $6::text,
  $7::int,
  $8::int,
  $9::timestamptz,
  $10::timestamptz
);
`

const QInsertRunAsset = `--sql 6c9d9ee5-eb84-46d3-9052-f8d8f40bacd4
insert into run_assets(run_id, position, url)
values ($1::uuid, $2::int, $3::text);
`

const QListRuns = `--sql b9d0de6b-a089-4ce8-ae45-71e51ac4a8ca
select id, instruction, subject_type, prompt, gen_model, gen_size,
       candidates_received, candidates_stored, started_at, finished_at
from runs
order by started_at desc
limit $1::int;
`

const QSelectRunByID = `--sql 799cc83f-3b07-4eea-8fa1-b30d1efdb608
select id, instruction, subject_type, prompt, gen_model, gen_size,
       candidates_received, candidates_stored, started_at, finished_at
from runs
where id = $1::uuid
limit 1;
`

const QListRunAssets = `--sql e01065df-09ba-4190-9294-0c5a1545c54e
select position, url
from run_assets
where run_id = $1::uuid
order by position asc;
`
