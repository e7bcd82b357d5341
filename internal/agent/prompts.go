package agent

import (
	"fmt"
	"strings"

	"github.com/fmuoria/resume-shortlisting/internal/ingestion"
)

// persona describes one of the two agents of the crew
type persona struct {
	role      string
	goal      string
	backstory string
}

var (
	jobAnalyst = persona{
		role:      "Job Description Analyst",
		goal:      "Extract key requirements, skills, and qualifications from job descriptions to enable precise candidate evaluation.",
		backstory: "You are a strategic HR professional with years of experience writing and interpreting job descriptions. You break complex job postings down into actionable hiring criteria.",
	}

	resumeScreener = persona{
		role:      "Resume Screener",
		goal:      "Evaluate and rank resumes based on alignment with job requirements.",
		backstory: "You are a recruitment expert trained in analyzing resumes with precision. You identify strengths, weaknesses, and red flags in candidate applications using clear evaluation frameworks.",
	}
)

func (p persona) preamble(sb *strings.Builder) {
	sb.WriteString(fmt.Sprintf("You are acting as: %s\n", p.role))
	sb.WriteString(fmt.Sprintf("Goal: %s\n", p.goal))
	sb.WriteString(fmt.Sprintf("Background: %s\n\n", p.backstory))
}

// buildAnalysisPrompt asks the analyst to break the job description down
func buildAnalysisPrompt(jobDescription string) string {
	var sb strings.Builder
	jobAnalyst.preamble(&sb)

	sb.WriteString("## JOB DESCRIPTION\n")
	sb.WriteString(strings.TrimSpace(jobDescription))
	sb.WriteString("\n\n")

	sb.WriteString("## TASK\n")
	sb.WriteString("Carefully analyze the job description above and summarize the most important requirements the hiring manager is looking for. ")
	sb.WriteString("Break the description down into must-have skills, nice-to-have skills, required experience and relevant industries.\n\n")

	sb.WriteString("## EXPECTED OUTPUT\n")
	sb.WriteString("A structured summary including:\n")
	sb.WriteString("- Must-have skills and qualifications\n")
	sb.WriteString("- Nice-to-have skills\n")
	sb.WriteString("- Required years of experience\n")
	sb.WriteString("- Preferred industries or domains\n\n")
	sb.WriteString("Do not use the '|' character anywhere in your answer.\n")

	return sb.String()
}

// buildScreeningPrompt asks the screener to score every resume against the analysis
func buildScreeningPrompt(analysis string, profiles []ingestion.ResumeProfile) string {
	var sb strings.Builder
	resumeScreener.preamble(&sb)

	sb.WriteString("## JOB REQUIREMENTS ANALYSIS\n")
	sb.WriteString(strings.TrimSpace(analysis))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("## RESUMES (%d)\n", len(profiles)))
	for i, p := range profiles {
		sb.WriteString(fmt.Sprintf("=== RESUME %d ===\n", i+1))
		sb.WriteString(p.String())
		sb.WriteString("\n")
	}

	sb.WriteString("## TASK\n")
	sb.WriteString("Evaluate each resume against the requirements and score it on a scale from 1 to 10. ")
	sb.WriteString("For each candidate use the name and mobile number from the CANDIDATE INFORMATION block ")
	sb.WriteString("and write 2-3 specific interview questions based on their background and the job requirements.\n\n")

	sb.WriteString("## OUTPUT FORMAT\n")
	sb.WriteString("Return ONLY a markdown table with exactly these columns, one row per candidate, best candidates first:\n")
	sb.WriteString("| Name | Mobile | Score | Questions | Reasoning |\n")
	sb.WriteString("|------|--------|-------|-----------|-----------|\n")
	sb.WriteString("Rules:\n")
	sb.WriteString("- Score is a number from 1 to 10\n")
	sb.WriteString("- Number the questions (1. 2. 3.) and separate them with <br>\n")
	sb.WriteString("- Keep every row on a single line and never use '|' inside a cell\n")
	sb.WriteString("- Write 'Not found' when a name or mobile number is unknown\n")

	return sb.String()
}

// composeReport joins the two task outputs into the report handed to extraction
func composeReport(analysis, screening string) string {
	var sb strings.Builder
	sb.WriteString("## Job Analysis\n")
	sb.WriteString(strings.TrimSpace(analysis))
	sb.WriteString("\n\n## Candidate Evaluation\n")
	sb.WriteString(strings.TrimSpace(screening))
	sb.WriteString("\n")
	return sb.String()
}
