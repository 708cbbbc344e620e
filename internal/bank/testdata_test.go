package bank

// sampleQuestions follows the questions.md layout.
const sampleQuestions = `Question 1
Which AWS service provides object storage?
A. Amazon S3
B. Amazon EC2
C. Amazon RDS
D. AWS Lambda
Correct Answer: A
Explanation: S3 is the object storage service.

Question 2
Which service runs code without provisioning servers?
A. Amazon EC2
B. AWS Lambda
C. Amazon EBS
D. Amazon VPC
Correct Answer: B
Explanation: Lambda is serverless compute: no servers to manage.

Notes
this block is too short

Question 4
Which pillar covers recovering from failures?
A. Security
B. Reliability
C. Cost Optimization
D. Performance Efficiency
Correct Answer: E
Explanation: Reliability.`
