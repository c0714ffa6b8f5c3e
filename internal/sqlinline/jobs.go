package sqlinline

const QEnsureJobsSchema = `--sql 0b7f3c52-9d61-4c1e-8f0a-5e2d7c4a9b11
create table if not exists jobs (
    id            uuid primary key,
    prompt        text        not null,
    logo_style    text        not null default 'no-style',
    surprise_me   boolean     not null default false,
    status        text        not null default 'processing',
    result_url    text,
    error_message text,
    claimed_at    timestamptz,
    created_at    timestamptz not null default now(),
    updated_at    timestamptz not null default now()
);
create index if not exists jobs_unclaimed_idx on jobs (created_at) where status = 'processing' and claimed_at is null;
`

const QInsertJob = `--sql 3e9a1f07-6c2b-4d8e-a5f4-71b0c9d2e6a3
insert into jobs (id, prompt, logo_style, surprise_me, status, created_at, updated_at)
values ($1::uuid, $2::text, $3::text, $4::boolean, 'processing', now(), now())
returning id::text, prompt, logo_style, surprise_me, status, coalesce(result_url, ''), coalesce(error_message, ''), created_at, updated_at;
`

const QSelectJob = `--sql 7d2c5e90-1a4b-4f3e-9c8d-b6a0e1f2c3d4
select id::text, prompt, logo_style, surprise_me, status, coalesce(result_url, ''), coalesce(error_message, ''), created_at, updated_at
from jobs
where id = $1::uuid
limit 1;
`

const QClaimNextJob = `--sql 4f55a9b7-4e9f-4e45-a3b3-5a532d21d9db
with next_job as (
    select id
    from jobs
    where status = 'processing' and claimed_at is null
    order by created_at asc
    for update skip locked
    limit 1
)
update jobs
set claimed_at = now(), updated_at = now()
where id in (select id from next_job)
returning id::text, prompt, logo_style, surprise_me, status, coalesce(result_url, ''), coalesce(error_message, ''), created_at, updated_at;
`

const QCompleteJob = `--sql 9a1b2c3d-4e5f-4a6b-8c7d-0e1f2a3b4c5d
update jobs
set status = 'done', result_url = $2::text, updated_at = now()
where id = $1::uuid and status = 'processing';
`

const QFailJob = `--sql c5d6e7f8-0a1b-4c2d-9e3f-4a5b6c7d8e9f
update jobs
set status = 'failed', error_message = $2::text, updated_at = now()
where id = $1::uuid and status = 'processing';
`

const QNotifyJobStatus = `--sql e1f2a3b4-c5d6-4e7f-8a9b-0c1d2e3f4a5b
select pg_notify($1::text, $2::text);
`

const QPing = `--sql 5b8e2d14-7c3a-4f69-b1d0-93a6e4c7f208
select 1;`
